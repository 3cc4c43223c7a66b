package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kmmndr/motiontrim/internal/pipeline"
	"github.com/kmmndr/motiontrim/internal/video"
)

// Discover walks input recursively and returns one job per supported video,
// sorted by path. Each job's output directory mirrors the video's directory
// relative to input under output, and is created.
func Discover(input, output string) ([]pipeline.Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input folder %s is not a directory", input)
	}

	var jobs []pipeline.Job
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !video.IsSupported(path) {
			return nil
		}

		rel, err := filepath.Rel(input, filepath.Dir(path))
		if err != nil {
			return err
		}
		outputDir := filepath.Join(output, rel)
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output folder: %w", err)
		}

		jobs = append(jobs, pipeline.Job{Input: path, OutputDir: outputDir})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}
