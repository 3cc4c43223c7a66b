// Package segment turns a per-frame motion classification stream into the
// ordered, disjoint list of frame ranges that make up a trimmed video.
package segment

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Classification is the verdict for a single frame.
type Classification struct {
	FrameIndex int
	Motion     bool
}

// Interval is an inclusive frame range.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (i Interval) Frames() int {
	return i.End - i.Start + 1
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d,%d]", i.Start, i.End)
}

// Seconds converts the interval bounds to timestamps at the given frame rate.
// End is the timestamp just after the last frame.
func (i Interval) Seconds(fps float64) (float64, float64) {
	return float64(i.Start) / fps, float64(i.End+1) / fps
}

// MaxPadFrames bounds PadFrames. It is far beyond any real video length.
const MaxPadFrames = math.MaxInt32

// PadFrames converts a buffer duration to whole frames, rounding up so the
// padding never covers less than the requested time. NaN counts as zero and
// overly long buffers saturate at MaxPadFrames.
func PadFrames(bufferTime, fps float64) int {
	if !(bufferTime > 0) || !(fps > 0) {
		return 0
	}
	frames := math.Ceil(bufferTime*fps - 1e-9)
	if !(frames < MaxPadFrames) {
		return MaxPadFrames
	}
	return int(frames)
}

// Pad widens every interval by pad frames on both ends, clamped to
// [0, total-1].
func Pad(intervals []Interval, pad, total int) []Interval {
	if total <= 0 {
		return nil
	}
	pad = min(max(pad, 0), total)
	padded := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		padded = append(padded, Interval{
			Start: max(0, iv.Start-pad),
			End:   min(total-1, iv.End+pad),
		})
	}
	return padded
}

// Merge orders intervals by start and coalesces those whose ranges overlap.
// The result satisfies out[i].End < out[i+1].Start.
func Merge(intervals []Interval) []Interval {
	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})

	merged := make([]Interval, 0, len(sorted))
	for _, iv := range sorted {
		n := len(merged)
		if n > 0 && merged[n-1].End >= iv.Start {
			merged[n-1].End = max(merged[n-1].End, iv.End)
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// TotalFrames sums the frames covered by disjoint intervals.
func TotalFrames(intervals []Interval) int {
	n := 0
	for _, iv := range intervals {
		n += iv.Frames()
	}
	return n
}
