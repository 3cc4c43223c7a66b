package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/segment"
)

func TestSelectExprKeepsOrder(t *testing.T) {
	got := SelectExpr([]segment.Interval{{Start: 15, End: 39}, {Start: 60, End: 70}})
	assert.Equal(t, "between(n,15,39)+between(n,60,70)", got)
}

func TestArgs(t *testing.T) {
	w := NewWriter(DefaultWriterConfig(), zap.NewNop())
	args := w.Args("in.mkv", []segment.Interval{{Start: 0, End: 9}, {Start: 20, End: 29}}, "out/.motion_in.mkv.part")

	assert.Equal(t, "in.mkv", args[indexOf(args, "-i")+1])
	graph := args[indexOf(args, "-filter_complex")+1]
	assert.Contains(t, graph, "select=")
	assert.Contains(t, graph, "between(n")
	assert.Contains(t, graph, "29)")
	assert.Contains(t, graph, "setpts=N/FRAME_RATE/TB")
	assert.Less(t, strings.Index(graph, "select="), strings.Index(graph, "setpts="))

	assert.Equal(t, "libx264", args[indexOf(args, "-c:v")+1])
	assert.Equal(t, "fast", args[indexOf(args, "-preset")+1])
	assert.Equal(t, "23", args[indexOf(args, "-crf")+1])
	assert.Equal(t, "matroska", args[indexOf(args, "-f")+1])
	assert.Equal(t, "error", args[indexOf(args, "-loglevel")+1])
	assert.Contains(t, args, "-an")
	assert.NotContains(t, args, "")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "out/.motion_in.mkv.part")
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func TestWriteSegmentsRejectsEmpty(t *testing.T) {
	w := NewWriter(DefaultWriterConfig(), zap.NewNop())
	err := w.WriteSegments(context.Background(), "in.mp4", nil, "out.mp4")
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestWriteSegmentsFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "motion_a.mp4")

	w := NewWriter(WriterConfig{Binary: "false"}, zap.NewNop())
	err := w.WriteSegments(context.Background(), "a.mp4", []segment.Interval{{Start: 0, End: 1}}, output)
	require.Error(t, err)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

// fakeEncoder installs a script standing in for ffmpeg that writes the
// .part file it is given and records its arguments.
func fakeEncoder(t *testing.T) (binary, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	binary = filepath.Join(dir, "ffmpeg")
	argsFile = filepath.Join(dir, "args")
	script := `#!/bin/sh
printf '%s\n' "$@" > "` + argsFile + `"
for a in "$@"; do
	case "$a" in
	*.part) out="$a" ;;
	esac
done
echo trimmed > "$out"
`
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, argsFile
}

func TestWriteSegmentsRenamesIntoPlace(t *testing.T) {
	binary, argsFile := fakeEncoder(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "motion_a.mp4")

	w := NewWriter(WriterConfig{Binary: binary, Codec: "libx264", Preset: "fast", CRF: 23}, zap.NewNop())
	err := w.WriteSegments(context.Background(), "a.mp4", []segment.Interval{{Start: 3, End: 8}}, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "trimmed\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "motion_a.mp4", entries[0].Name())

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "a.mp4\n")
	assert.Contains(t, string(args), ".motion_a.mp4.part\n")
}

func TestWriteSegmentsCancelled(t *testing.T) {
	binary, _ := fakeEncoder(t)
	output := filepath.Join(t.TempDir(), "motion_a.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWriter(WriterConfig{Binary: binary}, zap.NewNop())
	err := w.WriteSegments(ctx, "a.mp4", []segment.Interval{{Start: 0, End: 1}}, output)
	require.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestParseProbe(t *testing.T) {
	p, err := parseProbe(`{
		"streams": [
			{"codec_type": "audio", "avg_frame_rate": "0/0"},
			{"codec_type": "video", "avg_frame_rate": "30000/1001", "nb_frames": "N/A"}
		],
		"format": {"duration": "12.500000"}
	}`)
	require.NoError(t, err)
	assert.InDelta(t, 29.97, p.FPS, 0.01)
	assert.Equal(t, 0, p.Frames)
	assert.InDelta(t, 12.5, p.Duration, 1e-9)

	p, err = parseProbe(`{"streams": [{"codec_type": "video", "avg_frame_rate": "25/1", "nb_frames": "250"}], "format": {}}`)
	require.NoError(t, err)
	assert.Equal(t, 250, p.Frames)
	assert.InDelta(t, 25, p.FPS, 1e-9)

	_, err = parseProbe(`{"streams": [{"codec_type": "video", "avg_frame_rate": "abc"}]}`)
	assert.Error(t, err)

	_, err = parseProbe(`{"streams": [{"codec_type": "audio"}]}`)
	assert.ErrorIs(t, err, errNoVideoStream)

	_, err = parseProbe("not json")
	assert.Error(t, err)
}
