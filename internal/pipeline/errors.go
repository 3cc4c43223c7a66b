package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode means the input, or enough of it, could not be decoded.
	ErrDecode = errors.New("decode error")
	// ErrEncoding means the trimmed output could not be written. The
	// original is always kept.
	ErrEncoding = errors.New("encoding error")
	// ErrMetadata means the original's timestamps could not be read, or could
	// not be restored on the output. The original is kept.
	ErrMetadata = errors.New("metadata error")
	// ErrCleanup means removing the processed original failed.
	ErrCleanup = errors.New("cleanup error")
)

type Stage string

const (
	StageOpen     Stage = "open"
	StageScan     Stage = "scan"
	StageWrite    Stage = "write"
	StageMetadata Stage = "metadata"
	StageCleanup  Stage = "cleanup"
)

// FileError is a failure contained to one input file.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func fileError(path string, stage Stage, kind, err error) *FileError {
	return &FileError{Path: path, Stage: stage, Err: fmt.Errorf("%w: %w", kind, err)}
}
