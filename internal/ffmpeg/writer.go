// Package ffmpeg writes trimmed videos by driving the ffmpeg and ffprobe
// binaries.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/segment"
)

var ErrNoSegments = errors.New("no segments to write")

type WriterConfig struct {
	Binary string
	Codec  string
	Preset string
	CRF    int
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Binary: "ffmpeg",
		Codec:  "libx264",
		Preset: "fast",
		CRF:    23,
	}
}

type Writer struct {
	config WriterConfig
	logger *zap.Logger
}

func NewWriter(config WriterConfig, logger *zap.Logger) *Writer {
	if config.Binary == "" {
		config.Binary = "ffmpeg"
	}
	return &Writer{config: config, logger: logger}
}

// SelectExpr builds the select filter expression keeping the given frame
// ranges, in order.
func SelectExpr(segments []segment.Interval) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, fmt.Sprintf("between(n,%d,%d)", s.Start, s.End))
	}
	return strings.Join(parts, "+")
}

// Stream describes the ffmpeg graph that encodes only segments of source
// into output, renumbering the kept frames so playback has no holes. Audio is
// dropped.
func (w *Writer) Stream(source string, segments []segment.Interval, output string) *ffmpeggo.Stream {
	return ffmpeggo.Input(source).
		Filter("select", ffmpeggo.Args{SelectExpr(segments)}).
		Filter("setpts", ffmpeggo.Args{"N/FRAME_RATE/TB"}).
		Output(output, ffmpeggo.KwArgs{
			"an":     "",
			"c:v":    w.config.Codec,
			"preset": w.config.Preset,
			"crf":    strconv.Itoa(w.config.CRF),
			"f":      muxer(output),
		}).
		GlobalArgs("-loglevel", "error").
		OverWriteOutput()
}

// Args returns the command line of Stream.
func (w *Writer) Args(source string, segments []segment.Interval, output string) []string {
	return w.Stream(source, segments, output).GetArgs()
}

// WriteSegments encodes segments of source into output. The file is written
// beside output under a temporary name, synced, and renamed into place, so
// output either does not exist or is complete.
func (w *Writer) WriteSegments(ctx context.Context, source string, segments []segment.Interval, output string) error {
	if len(segments) == 0 {
		return ErrNoSegments
	}

	tmp := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".part")
	defer os.Remove(tmp)

	// ffmpeg is killed when ctx is cancelled.
	cmd := exec.CommandContext(ctx, w.config.Binary, w.Args(source, segments, tmp)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, strings.TrimSpace(string(out)))
	}

	if err := syncFile(tmp); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err := os.Rename(tmp, output); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	if err := syncDir(filepath.Dir(output)); err != nil {
		return fmt.Errorf("sync output dir: %w", err)
	}

	w.logger.Debug("segments written",
		zap.String("source", source),
		zap.String("output", output),
		zap.Int("segments", len(segments)),
	)
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// syncDir persists the directory entry of a freshly renamed file.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// muxer names the container format from the extension, since the temporary
// file name hides it from ffmpeg.
func muxer(path string) string {
	ext := strings.TrimSuffix(path, ".part")
	switch strings.ToLower(filepath.Ext(ext)) {
	case ".mp4":
		return "mp4"
	case ".mov":
		return "mov"
	case ".mkv":
		return "matroska"
	case ".avi":
		return "avi"
	case ".flv":
		return "flv"
	case ".wmv":
		return "asf"
	case ".mpeg":
		return "mpeg"
	}
	return "mp4"
}
