package motion

import (
	"fmt"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motiontrim/internal/segment"
)

// Report summarises one scan of a video file.
type Report struct {
	UUID          string             `json:"uuid"`
	Source        string             `json:"source"`
	FPS           float64            `json:"fps"`
	Frames        int                `json:"frames"`
	MotionFrames  int                `json:"motion_frames"`
	CorruptFrames int                `json:"corrupt_frames"`
	PadFrames     int                `json:"pad_frames"`
	Motions       []Motion           `json:"motions"`
	Segments      []segment.Interval `json:"segments"`
}

func NewReport(source string, fps float64) (*Report, error) {
	ref, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}

	return &Report{UUID: ref.String(), Source: source, FPS: fps}, nil
}

// Empty reports whether the scan found nothing worth keeping.
func (r *Report) Empty() bool {
	return len(r.Segments) == 0
}

// Duration is the length of the scanned video in seconds.
func (r *Report) Duration() float64 {
	if r.FPS <= 0 {
		return 0
	}
	return float64(r.Frames) / r.FPS
}

// KeptDuration is the length of the trimmed output in seconds.
func (r *Report) KeptDuration() float64 {
	if r.FPS <= 0 {
		return 0
	}
	return float64(segment.TotalFrames(r.Segments)) / r.FPS
}
