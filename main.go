package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/batch"
	"github.com/kmmndr/motiontrim/internal/config"
	"github.com/kmmndr/motiontrim/internal/ffmpeg"
	"github.com/kmmndr/motiontrim/internal/logger"
	"github.com/kmmndr/motiontrim/internal/metrics"
	"github.com/kmmndr/motiontrim/internal/motion"
	"github.com/kmmndr/motiontrim/internal/pipeline"
	"github.com/kmmndr/motiontrim/internal/tracing"
	"github.com/kmmndr/motiontrim/internal/video"
)

const (
	exitOK          = 0
	exitFileFailure = 1
	exitConfig      = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "Dotenv file read before the environment")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", &config.Error{Field: "LOG_LEVEL", Err: err})
		return exitConfig
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	if err := os.MkdirAll(cfg.OutputFolder, 0o755); err != nil {
		log.Error("unable to create output folder", zap.String("output", cfg.OutputFolder), zap.Error(err))
		return exitConfig
	}

	jobs, err := batch.Discover(cfg.InputFolder, cfg.OutputFolder)
	if err != nil {
		log.Error("unable to collect videos", zap.String("input", cfg.InputFolder), zap.Error(err))
		return exitConfig
	}

	m := metrics.New()
	detector := motion.NewDetector(motion.DetectorConfig{
		MinContourArea: float64(cfg.MinContourArea),
		DiffThreshold:  float32(cfg.DiffThreshold),
		BlurKernel:     cfg.BlurKernel,
	})
	sensor := motion.NewSensor(detector, motion.SensorConfig{
		Policy:       cfg.Policy(),
		Alpha:        cfg.BackgroundAlpha,
		GapTolerance: cfg.GapTolerance,
		BufferTime:   cfg.BufferTime,
	}, log)
	writer := ffmpeg.NewWriter(ffmpeg.WriterConfig{
		Binary: cfg.FFmpegBinary,
		Codec:  cfg.VideoCodec,
		Preset: cfg.EncoderPreset,
		CRF:    cfg.CRF,
	}, log)
	processor := pipeline.NewProcessor(openStream, sensor, writer, m, log, pipeline.Config{
		DeleteOriginals:     cfg.DeleteOriginals,
		KeepStaticOriginals: cfg.KeepStaticOriginals,
	})

	var progress io.Writer
	if cfg.Progress {
		progress = os.Stderr
	}

	log.Info("starting to process videos",
		zap.Int("total", len(jobs)),
		zap.Int("min_contour_area", cfg.MinContourArea),
		zap.Float64("buffer_time", cfg.BufferTime),
		zap.String("reference_policy", cfg.ReferencePolicy),
	)

	start := time.Now()
	summary := batch.NewRunner(processor, cfg.WorkerCount(), log, progress).Run(ctx, jobs)
	summary.Print(os.Stdout, time.Since(start))

	if cfg.PruneEmptyDirs && !errors.Is(ctx.Err(), context.Canceled) {
		batch.PruneEmptyDirs(cfg.InputFolder, log)
	}

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn("unable to write metrics", zap.String("path", cfg.MetricsTextfile), zap.Error(err))
		}
	}

	if summary.Failed() > 0 {
		return exitFileFailure
	}
	return exitOK
}

func openStream(path string) (pipeline.Source, error) {
	stream, err := video.NewFileStream(path)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
