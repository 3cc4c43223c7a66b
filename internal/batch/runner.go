package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/pipeline"
)

// Processor handles a single job. Implementations must be safe for
// concurrent use.
type Processor interface {
	Process(ctx context.Context, job pipeline.Job) pipeline.Result
}

type Runner struct {
	processor Processor
	workers   int
	logger    *zap.Logger
	progress  io.Writer
}

// NewRunner returns a Runner with a pool of workers. Pass a non-nil progress
// writer to draw a progress bar on it.
func NewRunner(processor Processor, workers int, logger *zap.Logger, progress io.Writer) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		processor: processor,
		workers:   workers,
		logger:    logger,
		progress:  progress,
	}
}

// Run pushes every job through the worker pool and collects the results.
// A failing file never stops the others. Jobs not started when ctx is
// cancelled are reported as failed with the context error.
func (r *Runner) Run(ctx context.Context, jobs []pipeline.Job) *Summary {
	workChan := make(chan pipeline.Job)
	resultsChan := make(chan pipeline.Result, len(jobs))

	var wg sync.WaitGroup

	workers := min(r.workers, max(len(jobs), 1))
	r.logger.Info("starting worker pool", zap.Int("workers", workers), zap.Int("files", len(jobs)))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workChan {
				if err := ctx.Err(); err != nil {
					resultsChan <- pipeline.Result{Job: job, Err: &pipeline.FileError{Path: job.Input, Stage: pipeline.StageOpen, Err: err}}
					continue
				}
				r.logger.Info("starting to process", zap.String("file", filepath.Base(job.Input)))
				resultsChan <- r.processor.Process(ctx, job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			workChan <- job
		}
		close(workChan)
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	bar := r.newBar(len(jobs))
	summary := &Summary{Total: len(jobs)}
	for res := range resultsChan {
		summary.Add(res)
		r.logResult(summary, res)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return summary
}

func (r *Runner) newBar(total int) *progressbar.ProgressBar {
	if r.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("trimming videos"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Runner) logResult(s *Summary, res pipeline.Result) {
	log := r.logger.With(
		zap.String("file", filepath.Base(res.Job.Input)),
		zap.String("progress", fmt.Sprintf("%d/%d", s.Done(), s.Total)),
		zap.Duration("elapsed", res.Elapsed),
	)
	switch {
	case res.Err != nil:
		log.Error("processing failed", zap.Error(res.Err))
	case res.Empty:
		log.Warn("no motion detected")
	default:
		log.Info("processed successfully", zap.String("output", res.Output))
	}
}
