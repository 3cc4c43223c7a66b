// Package restamp sets file times from the capture timestamp embedded in
// camera file names such as "motion_20210811-104712-1628671632.mp4".
package restamp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoTimestamp      = errors.New("no date-time pattern in file name")
	ErrInvalidTimestamp = errors.New("invalid timestamp in file name")
)

var namePattern = regexp.MustCompile(`\d{8}-\d{6}-(\d+)`)

// ParseName extracts the unix timestamp following the YYYYMMDD-HHMMSS- prefix.
func ParseName(name string) (time.Time, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoTimestamp, name)
	}
	secs, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || secs <= 0 || secs > time.Now().Add(100*365*24*time.Hour).Unix() {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, name)
	}
	return time.Unix(secs, 0), nil
}

type Result struct {
	Path    string
	Time    time.Time
	Skipped error
}

// Dir sets access and modification times of every file in dir matching
// pattern to the timestamp in its name. Files without one are skipped and
// reported in their Result.
func Dir(dir, pattern string, logger *zap.Logger) ([]Result, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("directory %s: %w", dir, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	logger.Debug("found files to process", zap.Int("count", len(files)))

	results := make([]Result, 0, len(files))
	for _, path := range files {
		res := Result{Path: path}
		ts, err := ParseName(filepath.Base(path))
		if err != nil {
			res.Skipped = err
			logger.Info("skipping file", zap.String("file", path), zap.Error(err))
			results = append(results, res)
			continue
		}
		if err := os.Chtimes(path, ts, ts); err != nil {
			return results, fmt.Errorf("set times on %s: %w", path, err)
		}
		res.Time = ts
		logger.Info("updated file times", zap.String("file", path), zap.Time("time", ts))
		results = append(results, res)
	}
	return results, nil
}
