package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/kmmndr/motiontrim/internal/frame"
)

// bgrFrame draws a filled white box on a black 160x120 BGR picture. OpenCV
// rectangles include both corners, so Rect(10, 10, 40, 40) fills 31x31 pixels
// and its external contour encloses 30x30.
func bgrFrame(index int, box image.Rectangle) *frame.Frame {
	mat := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	if !box.Empty() {
		gocv.Rectangle(&mat, box, color.RGBA{255, 255, 255, 0}, -1)
	}
	return frame.NewFrame(index, 10, &mat)
}

func sharpDetector(minArea float64) *Detector {
	return NewDetector(DetectorConfig{MinContourArea: minArea, DiffThreshold: 25, BlurKernel: 0})
}

func classify(t *testing.T, d *Detector, bg frame.Background, f *frame.Frame) (bool, frame.Background) {
	t.Helper()
	defer f.Close()
	motion, next, err := d.Classify(f, bg)
	require.NoError(t, err)
	return motion, next
}

func TestClassifyBootstrapFrameIsStatic(t *testing.T) {
	d := sharpDetector(1)
	bg := frame.NewBackground(frame.PolicyFirst, 0.05)

	motion, bg := classify(t, d, bg, bgrFrame(0, image.Rect(10, 10, 100, 100)))
	defer bg.Close()
	assert.False(t, motion)
	assert.True(t, bg.Ready())
}

func TestClassifyMinContourAreaIsInclusive(t *testing.T) {
	box := image.Rect(10, 10, 40, 40)

	for _, tt := range []struct {
		minArea float64
		want    bool
	}{
		{899, true},
		{900, true},
		{901, false},
	} {
		d := sharpDetector(tt.minArea)
		bg := frame.NewBackground(frame.PolicyFirst, 0.05)
		_, bg = classify(t, d, bg, bgrFrame(0, image.Rectangle{}))

		motion, bg := classify(t, d, bg, bgrFrame(1, box))
		bg.Close()
		assert.Equal(t, tt.want, motion, "min area %v", tt.minArea)
	}
}

func TestClassifyWithDefaultBlur(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	bg := frame.NewBackground(frame.PolicyRunning, 0.05)

	motion, bg := classify(t, d, bg, bgrFrame(0, image.Rectangle{}))
	defer func() { bg.Close() }()
	assert.False(t, motion)

	motion, bg = classify(t, d, bg, bgrFrame(1, image.Rectangle{}))
	assert.False(t, motion, "identical frames")

	motion, bg = classify(t, d, bg, bgrFrame(2, image.Rect(100, 40, 104, 44)))
	assert.False(t, motion, "speck below the area threshold")

	motion, bg = classify(t, d, bg, bgrFrame(3, image.Rect(20, 20, 80, 80)))
	assert.True(t, motion, "large object")
}

func TestClassifyContainsCorruptFrames(t *testing.T) {
	d := sharpDetector(100)
	bg := frame.NewBackground(frame.PolicyFirst, 0.05)
	_, bg = classify(t, d, bg, bgrFrame(0, image.Rectangle{}))
	defer func() { bg.Close() }()

	empty := gocv.NewMat()
	motion, next, err := d.Classify(frame.NewFrame(1, 10, &empty), bg)
	assert.ErrorIs(t, err, ErrCorruptFrame)
	assert.False(t, motion)
	assert.Equal(t, bg.Frames(), next.Frames())

	small := gocv.NewMatWithSize(60, 80, gocv.MatTypeCV8UC3)
	defer small.Close()
	motion, _, err = d.Classify(frame.NewFrame(2, 10, &small), bg)
	assert.ErrorIs(t, err, ErrCorruptFrame)
	assert.False(t, motion)

	motion, _ = classify(t, d, bg, bgrFrame(3, image.Rect(10, 10, 60, 60)))
	assert.True(t, motion, "scan recovers after corrupt frames")
}

func TestLargestContourArea(t *testing.T) {
	d := sharpDetector(1)

	mask := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8U)
	defer mask.Close()
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	assert.Zero(t, d.LargestContourArea(mask))

	gocv.Rectangle(&mask, image.Rect(1, 1, 5, 5), color.RGBA{255, 255, 255, 0}, -1)
	gocv.Rectangle(&mask, image.Rect(20, 20, 40, 30), color.RGBA{255, 255, 255, 0}, -1)
	assert.InDelta(t, 200, d.LargestContourArea(mask), 0.5)

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Zero(t, d.LargestContourArea(empty))
}
