package motion

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/kmmndr/motiontrim/internal/frame"
)

// ErrCorruptFrame marks a frame that could not be compared. Such frames count
// as static and the scan carries on.
var ErrCorruptFrame = errors.New("corrupt frame")

type DetectorConfig struct {
	MinContourArea float64
	DiffThreshold  float32
	BlurKernel     int
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinContourArea: 500,
		DiffThreshold:  25,
		BlurKernel:     21,
	}
}

// Detector classifies frames against a background. It holds no per-scan
// state, so one Detector can serve any number of scans.
type Detector struct {
	config DetectorConfig
}

func NewDetector(config DetectorConfig) *Detector {
	return &Detector{config: config}
}

// Classify reports whether f shows motion relative to background and returns
// the background to use for the next frame. The frame that seeds the
// background is never motion.
func (d *Detector) Classify(f *frame.Frame, background frame.Background) (bool, frame.Background, error) {
	if f.Empty() {
		return false, background, fmt.Errorf("%w %d: %v", ErrCorruptFrame, f.FrameIndex(), frame.ErrEmptyFrame)
	}

	gray, err := f.Gray()
	if err != nil {
		return false, background, fmt.Errorf("%w %d: %v", ErrCorruptFrame, f.FrameIndex(), err)
	}
	defer gray.Close()
	gray.Blur(d.config.BlurKernel)

	seeding := !background.Ready()
	mask, next, err := background.Apply(gray, d.config.DiffThreshold)
	defer mask.Close()
	if err != nil {
		return false, next, fmt.Errorf("%w %d: %v", ErrCorruptFrame, f.FrameIndex(), err)
	}
	if seeding {
		return false, next, nil
	}

	return d.LargestContourArea(mask) >= d.config.MinContourArea, next, nil
}

// LargestContourArea returns the area of the biggest external contour in a
// binary mask, or 0 when there is none.
func (d *Detector) LargestContourArea(mask gocv.Mat) float64 {
	if mask.Empty() {
		return 0
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	largest := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largest {
			largest = area
		}
	}
	return largest
}
