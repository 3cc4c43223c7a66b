package frame

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Policy selects how the reference frame evolves over a scan.
type Policy string

const (
	// PolicyFirst keeps the first good frame as the reference for the whole
	// scan. Slow lighting drift accumulates as motion.
	PolicyFirst Policy = "first"
	// PolicyRunning keeps an exponential running average of past frames.
	PolicyRunning Policy = "running"
	// PolicyMOG2 delegates to the OpenCV MOG2 subtractor.
	PolicyMOG2 Policy = "mog2"
)

// mog2 marks shadows with 127 and foreground with 255.
const mog2ForegroundThreshold = 244

var ErrSizeMismatch = errors.New("frame size differs from background")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFirst, PolicyRunning, PolicyMOG2:
		return p, nil
	}
	return "", fmt.Errorf("unknown reference policy %q", s)
}

// Background is the reference model gray frames are compared against. It is
// owned by a single scan: Apply consumes the receiver and returns the value to
// use for the next frame.
type Background struct {
	policy Policy
	alpha  float64
	frames int
	size   image.Point
	model  *gocv.Mat
	mog2   *gocv.BackgroundSubtractorMOG2
}

func NewBackground(policy Policy, alpha float64) Background {
	return Background{policy: policy, alpha: alpha}
}

func (b Background) Policy() Policy {
	return b.policy
}

// Ready reports whether a reference has been established.
func (b Background) Ready() bool {
	return b.frames > 0
}

// Frames is the number of frames folded into the model.
func (b Background) Frames() int {
	return b.frames
}

// Apply returns the binary foreground mask of gray against the current model
// and the updated model. The first frame only seeds the model, so the
// returned mask is empty. The caller owns the mask.
//
// The returned Background takes over the native model of b, which the running
// and mog2 policies update in place. After the call b is spent: do not apply
// or close it again, close only the latest value.
func (b Background) Apply(gray *Frame, threshold float32) (gocv.Mat, Background, error) {
	if gray.Empty() {
		return gocv.NewMat(), b, ErrEmptyFrame
	}

	if !b.Ready() {
		b.seed(gray)
		return gocv.NewMat(), b, nil
	}

	if size := gray.Size(); size != b.size {
		return gocv.NewMat(), b, fmt.Errorf("%w: %dx%d, want %dx%d",
			ErrSizeMismatch, size.X, size.Y, b.size.X, b.size.Y)
	}

	if b.policy == PolicyMOG2 {
		mask := gocv.NewMat()
		b.mog2.Apply(*gray.Mat(), &mask)
		gocv.Threshold(mask, &mask, mog2ForegroundThreshold, 255, gocv.ThresholdBinary)
		b.frames++
		return mask, b, nil
	}

	reference := gocv.NewMat()
	defer reference.Close()
	b.model.ConvertTo(&reference, gocv.MatTypeCV8U)

	mask := gocv.NewMat()
	gocv.AbsDiff(*gray.Mat(), reference, &mask)
	gocv.Threshold(mask, &mask, threshold, 255, gocv.ThresholdBinary)

	if b.policy == PolicyRunning {
		gocv.AccumulatedWeighted(*gray.Mat(), b.model, b.alpha)
	}
	b.frames++

	return mask, b, nil
}

func (b *Background) seed(gray *Frame) {
	b.size = gray.Size()
	b.frames = 1

	switch b.policy {
	case PolicyMOG2:
		subtractor := gocv.NewBackgroundSubtractorMOG2()
		learned := gocv.NewMat()
		defer learned.Close()
		subtractor.Apply(*gray.Mat(), &learned)
		b.mog2 = &subtractor
	case PolicyRunning:
		model := gocv.NewMat()
		gray.Mat().ConvertTo(&model, gocv.MatTypeCV32F)
		b.model = &model
	default:
		model := gray.Mat().Clone()
		b.model = &model
	}
}

// Close releases the native resources held by the model.
func (b Background) Close() {
	if b.model != nil {
		b.model.Close()
	}
	if b.mog2 != nil {
		b.mog2.Close()
	}
}
