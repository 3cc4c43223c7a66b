package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// PruneEmptyDirs removes empty directories below root, deepest first, so a
// directory emptied by removing its children goes too. root itself is kept.
// Failures are logged and skipped.
func PruneEmptyDirs(root string, logger *zap.Logger) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deeper paths sort after their parents; walk them in reverse.
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	var removed []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logger.Warn("failed to delete directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Info("deleted empty directory", zap.String("dir", dir))
		removed = append(removed, dir)
	}
	return removed
}
