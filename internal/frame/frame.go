package frame

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

var ErrEmptyFrame = errors.New("frame is empty")

// Frame is one decoded picture and its position in the stream.
type Frame struct {
	frameIndex int
	timestamp  float64
	mat        *gocv.Mat
}

// NewFrame wraps mat. An empty mat is accepted so that undecodable frames
// still occupy their slot in the stream; check Empty before using the pixels.
func NewFrame(frameIndex int, fps float64, mat *gocv.Mat) *Frame {
	ts := 0.0
	if fps > 0 {
		ts = float64(frameIndex) / fps
	}
	return &Frame{frameIndex: frameIndex, timestamp: ts, mat: mat}
}

func (f *Frame) Mat() *gocv.Mat {
	return f.mat
}

func (f *Frame) FrameIndex() int {
	return f.frameIndex
}

// Timestamp is the frame position in seconds.
func (f *Frame) Timestamp() float64 {
	return f.timestamp
}

func (f *Frame) Empty() bool {
	return f.mat == nil || f.mat.Empty()
}

// Gray returns a single channel copy of the frame.
func (f *Frame) Gray() (*Frame, error) {
	if f.Empty() {
		return nil, ErrEmptyFrame
	}

	gray := gocv.NewMat()
	if f.mat.Channels() == 1 {
		f.mat.CopyTo(&gray)
	} else {
		gocv.CvtColor(*f.mat, &gray, gocv.ColorBGRToGray)
	}

	return &Frame{frameIndex: f.frameIndex, timestamp: f.timestamp, mat: &gray}, nil
}

// Blur applies a Gaussian blur in place. A kernel of 0 leaves the frame as is.
func (f *Frame) Blur(kernel int) {
	if kernel <= 0 || f.Empty() {
		return
	}
	gocv.GaussianBlur(*f.mat, f.mat, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)
}

func (f *Frame) Size() image.Point {
	return image.Pt(f.Width(), f.Height())
}

func (f *Frame) Height() int {
	return f.mat.Rows()
}

func (f *Frame) Width() int {
	return f.mat.Cols()
}

func (f *Frame) Close() {
	if f.mat != nil {
		f.mat.Close()
	}
}
