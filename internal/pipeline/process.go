package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/metrics"
	"github.com/kmmndr/motiontrim/internal/motion"
	"github.com/kmmndr/motiontrim/internal/segment"
	"github.com/kmmndr/motiontrim/internal/tracing"
)

var errNoFrames = errors.New("no frame could be decoded")

// OutputPrefix is prepended to the input base name to name its output.
const OutputPrefix = "motion_"

// Source is an opened input video.
type Source interface {
	motion.Source
	Close() error
}

type Opener func(path string) (Source, error)

type Scanner interface {
	Scan(ctx context.Context, name string, src motion.Source) (*motion.Report, error)
}

type SegmentWriter interface {
	WriteSegments(ctx context.Context, source string, segments []segment.Interval, output string) error
}

// Job is one input file and the directory its output goes to.
type Job struct {
	Input     string
	OutputDir string
}

func (j Job) OutputPath() string {
	return filepath.Join(j.OutputDir, OutputPrefix+filepath.Base(j.Input))
}

type Result struct {
	Job     Job
	Report  *motion.Report
	Output  string
	Empty   bool
	Deleted bool
	Elapsed time.Duration
	Err     error
}

type Config struct {
	DeleteOriginals     bool
	KeepStaticOriginals bool
}

// Processor runs the whole pipeline for one file at a time. It keeps no state
// between files and is safe for concurrent use by several workers.
type Processor struct {
	open    Opener
	scanner Scanner
	writer  SegmentWriter
	metrics *metrics.Metrics
	logger  *zap.Logger
	config  Config
}

func NewProcessor(open Opener, scanner Scanner, writer SegmentWriter, m *metrics.Metrics, logger *zap.Logger, config Config) *Processor {
	return &Processor{
		open:    open,
		scanner: scanner,
		writer:  writer,
		metrics: m,
		logger:  logger,
		config:  config,
	}
}

// Process scans job.Input, writes the motion segments to the job's output
// path, restores the original timestamps on it and removes the original.
// A file without motion produces no output. Failures are returned in the
// Result as *FileError; the original is only removed after its output is in
// place.
func (p *Processor) Process(ctx context.Context, job Job) Result {
	start := time.Now()
	ctx, span := tracing.Tracer().Start(ctx, "Processor.Process",
		trace.WithAttributes(attribute.String("file", job.Input)))
	defer span.End()

	p.metrics.ActiveWorkers.Inc()
	defer p.metrics.ActiveWorkers.Dec()

	log := p.logger.With(zap.String("file", job.Input))
	res := p.process(ctx, job, log)
	res.Elapsed = time.Since(start)

	switch {
	case res.Err != nil:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		p.metrics.FilesProcessedTotal.WithLabelValues("failed").Inc()
	case res.Empty:
		p.metrics.FilesProcessedTotal.WithLabelValues("empty").Inc()
	default:
		p.metrics.FilesProcessedTotal.WithLabelValues("succeeded").Inc()
	}
	return res
}

func (p *Processor) process(ctx context.Context, job Job, log *zap.Logger) Result {
	res := Result{Job: job}

	original, err := ReadTimes(job.Input)
	if err != nil {
		res.Err = fileError(job.Input, StageOpen, ErrMetadata, err)
		return res
	}

	report, err := p.scan(ctx, job.Input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report
	p.metrics.FramesScannedTotal.Add(float64(report.Frames))
	p.metrics.MotionFramesTotal.Add(float64(report.MotionFrames))
	p.metrics.CorruptFramesTotal.Add(float64(report.CorruptFrames))

	log = log.With(zap.String("report", report.UUID))
	log.Info("scan complete",
		zap.Int("frames", report.Frames),
		zap.Int("motion_frames", report.MotionFrames),
		zap.Int("corrupt_frames", report.CorruptFrames),
		zap.Int("motions", len(report.Motions)),
		zap.Int("segments", len(report.Segments)),
		zap.Float64("duration_secs", report.Duration()),
		zap.Float64("kept_secs", report.KeptDuration()),
	)

	if report.Empty() {
		res.Empty = true
		log.Warn("no motion detected")
		if p.config.DeleteOriginals && !p.config.KeepStaticOriginals {
			if err := p.remove(ctx, job.Input); err != nil {
				res.Err = err
				return res
			}
			res.Deleted = true
			log.Info("original deleted")
		}
		return res
	}

	output := job.OutputPath()
	if err := p.write(ctx, job.Input, report.Segments, output); err != nil {
		res.Err = err
		return res
	}
	res.Output = output
	p.metrics.SegmentsWritten.Add(float64(len(report.Segments)))
	log.Info("motion video saved", zap.String("output", output))

	if err := original.Apply(output); err != nil {
		res.Err = fileError(job.Input, StageMetadata, ErrMetadata, err)
		return res
	}

	if p.config.DeleteOriginals {
		if err := p.remove(ctx, job.Input); err != nil {
			res.Err = err
			return res
		}
		res.Deleted = true
		log.Info("original deleted")
	}
	return res
}

func (p *Processor) scan(ctx context.Context, path string) (*motion.Report, error) {
	defer p.observe(string(StageScan), time.Now())
	ctx, span := tracing.Tracer().Start(ctx, "scan")
	defer span.End()

	src, err := p.open(path)
	if err != nil {
		return nil, fileError(path, StageOpen, ErrDecode, err)
	}
	defer src.Close()

	report, err := p.scanner.Scan(ctx, path, src)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &FileError{Path: path, Stage: StageScan, Err: err}
		}
		return nil, fileError(path, StageScan, ErrDecode, err)
	}
	if report.Frames == 0 {
		return nil, fileError(path, StageScan, ErrDecode, errNoFrames)
	}
	span.SetAttributes(
		attribute.Int("frames", report.Frames),
		attribute.Int("segments", len(report.Segments)),
	)
	return report, nil
}

func (p *Processor) write(ctx context.Context, input string, segments []segment.Interval, output string) error {
	defer p.observe(string(StageWrite), time.Now())
	ctx, span := tracing.Tracer().Start(ctx, "write")
	defer span.End()

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fileError(input, StageWrite, ErrEncoding, err)
	}
	if err := p.writer.WriteSegments(ctx, input, segments, output); err != nil {
		return fileError(input, StageWrite, ErrEncoding, err)
	}
	return nil
}

func (p *Processor) remove(ctx context.Context, path string) error {
	_, span := tracing.Tracer().Start(ctx, "cleanup")
	defer span.End()

	if err := os.Remove(path); err != nil {
		return fileError(path, StageCleanup, ErrCleanup, fmt.Errorf("delete original: %w", err))
	}
	return nil
}

func (p *Processor) observe(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
