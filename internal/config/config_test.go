package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmmndr/motiontrim/internal/frame"
)

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MinContourArea)
	assert.Equal(t, 2.0, cfg.BufferTime)
	assert.Equal(t, "videos", cfg.InputFolder)
	assert.Equal(t, "output", cfg.OutputFolder)
	assert.Equal(t, 0, cfg.GapTolerance)
	assert.Equal(t, frame.PolicyRunning, cfg.Policy())
	assert.True(t, cfg.DeleteOriginals)
	assert.False(t, cfg.KeepStaticOriginals)
	assert.GreaterOrEqual(t, cfg.WorkerCount(), 1)
	assert.LessOrEqual(t, cfg.WorkerCount(), 4)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MIN_CONTOUR_AREA", "1200")
	t.Setenv("BUFFER_TIME", "0.5")
	t.Setenv("INPUT_FOLDER", "/data/in")
	t.Setenv("REFERENCE_POLICY", "mog2")
	t.Setenv("WORKERS", "7")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.MinContourArea)
	assert.Equal(t, 0.5, cfg.BufferTime)
	assert.Equal(t, "/data/in", cfg.InputFolder)
	assert.Equal(t, frame.PolicyMOG2, cfg.Policy())
	assert.Equal(t, 7, cfg.WorkerCount())
}

func TestLoadDotenv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("OUTPUT_FOLDER=trimmed\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("OUTPUT_FOLDER") })

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "trimmed", cfg.OutputFolder)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, field string
	}{
		{"MIN_CONTOUR_AREA", "0", "MIN_CONTOUR_AREA"},
		{"BUFFER_TIME", "-1", "BUFFER_TIME"},
		{"BUFFER_TIME", "Inf", "BUFFER_TIME"},
		{"BUFFER_TIME", "NaN", "BUFFER_TIME"},
		{"BACKGROUND_ALPHA", "NaN", "BACKGROUND_ALPHA"},
		{"GAP_TOLERANCE", "-2", "GAP_TOLERANCE"},
		{"REFERENCE_POLICY", "median", "REFERENCE_POLICY"},
		{"BLUR_KERNEL", "4", "BLUR_KERNEL"},
		{"BACKGROUND_ALPHA", "0", "BACKGROUND_ALPHA"},
		{"DIFF_THRESHOLD", "300", "DIFF_THRESHOLD"},
		{"CRF", "99", "CRF"},
		{"MIN_CONTOUR_AREA", "lots", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(noDotenv(t))
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
