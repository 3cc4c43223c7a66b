package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kmmndr/motiontrim/internal/frame"
)

type Config struct {
	MinContourArea int     `env:"MIN_CONTOUR_AREA" envDefault:"500"`
	BufferTime     float64 `env:"BUFFER_TIME"      envDefault:"2"`
	InputFolder    string  `env:"INPUT_FOLDER"     envDefault:"videos"`
	OutputFolder   string  `env:"OUTPUT_FOLDER"    envDefault:"output"`

	GapTolerance    int     `env:"GAP_TOLERANCE"    envDefault:"0"`
	ReferencePolicy string  `env:"REFERENCE_POLICY" envDefault:"running"`
	BackgroundAlpha float64 `env:"BACKGROUND_ALPHA" envDefault:"0.05"`
	BlurKernel      int     `env:"BLUR_KERNEL"      envDefault:"21"`
	DiffThreshold   int     `env:"DIFF_THRESHOLD"   envDefault:"25"`

	Workers int `env:"WORKERS" envDefault:"0"`

	FFmpegBinary  string `env:"FFMPEG_BINARY"  envDefault:"ffmpeg"`
	VideoCodec    string `env:"VIDEO_CODEC"    envDefault:"libx264"`
	EncoderPreset string `env:"ENCODER_PRESET" envDefault:"fast"`
	CRF           int    `env:"CRF"            envDefault:"23"`

	DeleteOriginals     bool `env:"DELETE_ORIGINALS"      envDefault:"true"`
	KeepStaticOriginals bool `env:"KEEP_STATIC_ORIGINALS" envDefault:"false"`
	PruneEmptyDirs      bool `env:"PRUNE_EMPTY_DIRS"      envDefault:"true"`

	LogLevel        string `env:"LOG_LEVEL"        envDefault:"info"`
	Progress        bool   `env:"PROGRESS"         envDefault:"false"`
	MetricsTextfile string `env:"METRICS_TEXTFILE" envDefault:""`
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:""`
}

// Error reports an unusable configuration. It is fatal before any file is
// touched.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads the environment, after merging variables from the given dotenv
// files (".env" when none are named). Missing dotenv files are ignored;
// variables already set in the environment win.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Field: file, Err: err}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &Error{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.MinContourArea <= 0:
		return &Error{Field: "MIN_CONTOUR_AREA", Err: fmt.Errorf("must be positive, got %d", c.MinContourArea)}
	case !(c.BufferTime >= 0) || math.IsInf(c.BufferTime, 1):
		return &Error{Field: "BUFFER_TIME", Err: fmt.Errorf("must be a finite non-negative number, got %v", c.BufferTime)}
	case c.InputFolder == "":
		return &Error{Field: "INPUT_FOLDER", Err: errors.New("must not be empty")}
	case c.OutputFolder == "":
		return &Error{Field: "OUTPUT_FOLDER", Err: errors.New("must not be empty")}
	case c.GapTolerance < 0:
		return &Error{Field: "GAP_TOLERANCE", Err: fmt.Errorf("must not be negative, got %d", c.GapTolerance)}
	case !(c.BackgroundAlpha > 0 && c.BackgroundAlpha <= 1):
		return &Error{Field: "BACKGROUND_ALPHA", Err: fmt.Errorf("must be in (0, 1], got %v", c.BackgroundAlpha)}
	case c.BlurKernel < 0 || (c.BlurKernel > 0 && c.BlurKernel%2 == 0):
		return &Error{Field: "BLUR_KERNEL", Err: fmt.Errorf("must be 0 or odd, got %d", c.BlurKernel)}
	case c.DiffThreshold < 1 || c.DiffThreshold > 255:
		return &Error{Field: "DIFF_THRESHOLD", Err: fmt.Errorf("must be in [1, 255], got %d", c.DiffThreshold)}
	case c.Workers < 0:
		return &Error{Field: "WORKERS", Err: fmt.Errorf("must not be negative, got %d", c.Workers)}
	case c.CRF < 0 || c.CRF > 51:
		return &Error{Field: "CRF", Err: fmt.Errorf("must be in [0, 51], got %d", c.CRF)}
	}
	if _, err := frame.ParsePolicy(c.ReferencePolicy); err != nil {
		return &Error{Field: "REFERENCE_POLICY", Err: err}
	}
	return nil
}

func (c *Config) Policy() frame.Policy {
	p, _ := frame.ParsePolicy(c.ReferencePolicy)
	return p
}

// WorkerCount resolves WORKERS, where 0 means min(4, NumCPU).
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return min(4, runtime.NumCPU())
}
