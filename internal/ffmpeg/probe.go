package ffmpeg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

var errNoVideoStream = errors.New("no video stream")

// Probe holds the stream properties reported by ffprobe.
type Probe struct {
	Duration float64
	FPS      float64
	Frames   int
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeVideo asks ffprobe for the first video stream's frame rate, frame
// count and the container duration.
func ProbeVideo(videoPath string) (*Probe, error) {
	out, err := ffmpeggo.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(data string) (*Probe, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	p := &Probe{}
	if d := out.Format.Duration; known(d) {
		duration, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("parse duration: %w", err)
		}
		p.Duration = duration
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if known(s.AvgFrameRate) {
			fps, err := parseRate(s.AvgFrameRate)
			if err != nil {
				return nil, fmt.Errorf("parse frame rate: %w", err)
			}
			p.FPS = fps
		}
		if known(s.NbFrames) {
			n, err := strconv.Atoi(s.NbFrames)
			if err != nil {
				return nil, fmt.Errorf("parse frame count: %w", err)
			}
			p.Frames = n
		}
		return p, nil
	}
	return nil, errNoVideoStream
}

func known(v string) bool {
	return v != "" && v != "N/A"
}

// parseRate reads ffprobe rationals such as "30000/1001".
func parseRate(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	if !ok {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}
