package segment

import (
	"errors"
	"fmt"
)

var ErrOutOfOrder = errors.New("classification out of frame order")

type state int

const (
	idle state = iota
	inMotion
)

// Builder accumulates raw motion intervals from classifications fed in strict
// frame order. A run ends once more than tolerance consecutive static frames
// follow it; the run is closed at its last motion frame.
type Builder struct {
	tolerance int

	state     state
	start     int
	end       int
	gapFrames int
	frames    int
	raw       []Interval
}

func NewBuilder(tolerance int) *Builder {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Builder{tolerance: tolerance}
}

// Add consumes the classification of the next frame.
func (b *Builder) Add(c Classification) error {
	if c.FrameIndex != b.frames {
		return fmt.Errorf("%w: got frame %d, want %d", ErrOutOfOrder, c.FrameIndex, b.frames)
	}
	b.frames++

	switch {
	case b.state == idle && c.Motion:
		b.state = inMotion
		b.start = c.FrameIndex
		b.end = c.FrameIndex
		b.gapFrames = 0
	case b.state == inMotion && c.Motion:
		b.end = c.FrameIndex
		b.gapFrames = 0
	case b.state == inMotion:
		b.gapFrames++
		if b.gapFrames > b.tolerance {
			b.close()
		}
	}
	return nil
}

func (b *Builder) close() {
	b.raw = append(b.raw, Interval{Start: b.start, End: b.end})
	b.state = idle
	b.gapFrames = 0
}

// Frames returns how many classifications have been consumed.
func (b *Builder) Frames() int {
	return b.frames
}

// Raw returns the raw intervals found so far, an open run ending at its last
// motion frame. The builder keeps consuming where it left off.
func (b *Builder) Raw() []Interval {
	raw := append([]Interval(nil), b.raw...)
	if b.state == inMotion {
		raw = append(raw, Interval{Start: b.start, End: b.end})
	}
	return raw
}

// Segments pads every raw interval and merges the result.
func (b *Builder) Segments(pad int) []Interval {
	return Merge(Pad(b.Raw(), pad, b.frames))
}

// Options parameterise Build.
type Options struct {
	GapTolerance int
	BufferTime   float64
	FPS          float64
}

// Build runs a fresh Builder over a complete classification stream.
func Build(stream []Classification, opts Options) ([]Interval, error) {
	b := NewBuilder(opts.GapTolerance)
	for _, c := range stream {
		if err := b.Add(c); err != nil {
			return nil, err
		}
	}
	return b.Segments(PadFrames(opts.BufferTime, opts.FPS)), nil
}
