package video

import (
	"path/filepath"
	"strings"
)

// Extensions lists the container formats picked up from the input folder.
var Extensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv", ".mpeg"}

// IsSupported reports whether path has one of Extensions, ignoring case.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
