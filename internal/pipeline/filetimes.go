package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/djherbis/times"
)

// FileTimes holds the access and modification times of a file.
type FileTimes struct {
	Atime time.Time
	Mtime time.Time
}

// ReadTimes returns the times of path. Reading the file afterwards may move
// its access time, so take them before the content is touched.
func ReadTimes(path string) (FileTimes, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return FileTimes{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileTimes{Atime: ts.AccessTime(), Mtime: ts.ModTime()}, nil
}

// Apply sets the times of path.
func (t FileTimes) Apply(path string) error {
	if err := os.Chtimes(path, t.Atime, t.Mtime); err != nil {
		return fmt.Errorf("chtimes %s: %w", path, err)
	}
	return nil
}
