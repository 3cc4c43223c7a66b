package video

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/kmmndr/motiontrim/internal/frame"
)

// Stream decodes a video file frame by frame.
type Stream struct {
	Video      *gocv.VideoCapture
	frameIndex int
}

func NewFileStream(videoPath string) (*Stream, error) {
	video, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open video file: %w", err)
	}
	if !video.IsOpened() {
		video.Close()
		return nil, fmt.Errorf("unable to open video file: %s", videoPath)
	}
	return &Stream{Video: video}, nil
}

func (s *Stream) Close() error {
	return s.Video.Close()
}

func (s *Stream) Fps() float64 {
	return s.Video.Get(gocv.VideoCaptureFPS)
}

// FrameCount is the container's frame count estimate; it may be 0 or off by
// a few frames for streams without an index. Scans use it to tell a decoder
// that gave up from the real end of the stream.
func (s *Stream) FrameCount() int {
	return int(s.Video.Get(gocv.VideoCaptureFrameCount))
}

// Next returns the next frame, or io.EOF once the decoder stops producing
// frames. A frame that decodes to an empty picture is still returned so it
// keeps its index.
func (s *Stream) Next() (*frame.Frame, error) {
	mat := gocv.NewMat()
	if ok := s.Video.Read(&mat); !ok {
		mat.Close()
		return nil, io.EOF
	}

	f := frame.NewFrame(s.frameIndex, s.Fps(), &mat)
	s.frameIndex++
	return f, nil
}
