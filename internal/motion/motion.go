package motion

import (
	"fmt"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motiontrim/internal/segment"
)

// Motion is one uninterrupted run of motion frames.
type Motion struct {
	UUID       string `json:"uuid"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
}

func NewMotion(interval segment.Interval) (Motion, error) {
	ref, err := uuid.NewV4()
	if err != nil {
		return Motion{}, fmt.Errorf("failed to generate UUID: %w", err)
	}

	return Motion{
		UUID:       ref.String(),
		StartFrame: interval.Start,
		EndFrame:   interval.End,
	}, nil
}

func (m Motion) FramesCount() int {
	return m.EndFrame - m.StartFrame + 1
}

// Duration is the length of the run in seconds.
func (m Motion) Duration(fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(m.FramesCount()) / fps
}

func (m Motion) Interval() segment.Interval {
	return segment.Interval{Start: m.StartFrame, End: m.EndFrame}
}
