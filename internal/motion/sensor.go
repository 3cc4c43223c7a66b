package motion

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/frame"
	"github.com/kmmndr/motiontrim/internal/segment"
)

// Source yields decoded frames in stream order and io.EOF once exhausted.
// Frames that failed to decode are returned empty rather than as errors.
type Source interface {
	Next() (*frame.Frame, error)
	Fps() float64
}

// ErrTruncated is returned when the decoder stops well before the frame count
// the container declares.
var ErrTruncated = errors.New("decoding stopped early")

// FrameCounter is implemented by sources that know how many frames the
// container declares. A count of 0 or less means unknown.
type FrameCounter interface {
	FrameCount() int
}

type SensorConfig struct {
	Policy       frame.Policy
	Alpha        float64
	GapTolerance int
	BufferTime   float64
}

// Sensor scans one source at a time: frames are classified strictly in order
// and the verdicts folded into motion segments.
type Sensor struct {
	detector *Detector
	config   SensorConfig
	logger   *zap.Logger
}

func NewSensor(detector *Detector, config SensorConfig, logger *zap.Logger) *Sensor {
	return &Sensor{
		detector: detector,
		config:   config,
		logger:   logger,
	}
}

// Scan reads src to the end and returns the report for it. Corrupt frames
// count as static; only a failing source aborts the scan.
func (s *Sensor) Scan(ctx context.Context, name string, src Source) (*Report, error) {
	fps := src.Fps()
	if fps <= 0 {
		return nil, fmt.Errorf("unable to get video frame rate for %s", name)
	}

	report, err := NewReport(name, fps)
	if err != nil {
		return nil, err
	}

	background := frame.NewBackground(s.config.Policy, s.config.Alpha)
	defer func() { background.Close() }()

	builder := segment.NewBuilder(s.config.GapTolerance)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		currentFrame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", builder.Frames(), err)
		}

		var isMotion bool
		isMotion, background, err = s.detector.Classify(currentFrame, background)
		currentFrame.Close()
		if err != nil {
			if !errors.Is(err, ErrCorruptFrame) {
				return nil, err
			}
			report.CorruptFrames++
			s.logger.Debug("treating frame as static", zap.String("file", name), zap.Error(err))
		}
		if isMotion {
			report.MotionFrames++
		}

		if err := builder.Add(segment.Classification{FrameIndex: builder.Frames(), Motion: isMotion}); err != nil {
			return nil, err
		}
	}

	report.Frames = builder.Frames()
	if err := checkDecoded(src, report.Frames); err != nil {
		return nil, err
	}
	for _, raw := range builder.Raw() {
		m, err := NewMotion(raw)
		if err != nil {
			return nil, err
		}
		report.Motions = append(report.Motions, m)
	}
	report.PadFrames = segment.PadFrames(s.config.BufferTime, fps)
	report.Segments = builder.Segments(report.PadFrames)

	return report, nil
}

// checkDecoded compares the decoded frame count with the declared one. Counts
// are estimates, so a tenth of the stream may go missing before it fails.
func checkDecoded(src Source, decoded int) error {
	counter, ok := src.(FrameCounter)
	if !ok {
		return nil
	}
	declared := counter.FrameCount()
	if declared <= 0 || decoded >= declared-declared/10 {
		return nil
	}
	return fmt.Errorf("%w: decoded %d of %d frames", ErrTruncated, decoded, declared)
}
