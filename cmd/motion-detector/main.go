package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kmmndr/motiontrim/internal/ffmpeg"
	"github.com/kmmndr/motiontrim/internal/frame"
	"github.com/kmmndr/motiontrim/internal/logger"
	"github.com/kmmndr/motiontrim/internal/motion"
	"github.com/kmmndr/motiontrim/internal/video"
)

// motion-detector scans a single video and prints the segments the trimmer
// would keep. Nothing is encoded or deleted.
func main() {
	var videoPath string
	var minContourArea float64
	var bufferTime float64
	var gapTolerance int
	var policy string
	var asJSON bool
	var verbose bool

	defaults := motion.DefaultDetectorConfig()
	flag.Float64Var(&minContourArea, "min-area", defaults.MinContourArea, "Minimum contour area in pixels")
	flag.Float64Var(&bufferTime, "buffer", 2, "Buffer time around motion in seconds")
	flag.IntVar(&gapTolerance, "gap", 0, "Static frames tolerated inside a motion run")
	flag.StringVar(&policy, "policy", string(frame.PolicyRunning), "Reference policy: running, first or mog2")
	flag.StringVar(&videoPath, "video", "", "Video filename")
	flag.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	flag.BoolVar(&verbose, "v", false, "Log corrupt frames")
	flag.Parse()

	if videoPath == "" {
		fmt.Println("Error: missing video filename option")
		os.Exit(1)
	}

	refPolicy, err := frame.ParsePolicy(policy)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	zlog, err := logger.New(level)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	defer zlog.Sync()

	stream, err := video.NewFileStream(videoPath)
	if err != nil {
		log.Fatalf("Error: unable to open video file: %v\n", err)
	}
	defer stream.Close()

	fps := stream.Fps()
	if fps <= 0 {
		log.Fatal("Error: unable to get video frame rate")
	}

	detector := motion.NewDetector(motion.DetectorConfig{
		MinContourArea: minContourArea,
		DiffThreshold:  defaults.DiffThreshold,
		BlurKernel:     defaults.BlurKernel,
	})
	sensor := motion.NewSensor(detector, motion.SensorConfig{
		Policy:       refPolicy,
		Alpha:        0.05,
		GapTolerance: gapTolerance,
		BufferTime:   bufferTime,
	}, zlog)

	ctx := context.Background()
	report, err := sensor.Scan(ctx, videoPath, stream)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Printf("Video frame rate: %.2f fps\n", fps)
	if probe, err := ffmpeg.ProbeVideo(videoPath); err == nil {
		fmt.Printf("Container duration: %.2f seconds.\n", probe.Duration)
	} else {
		zlog.Debug("ffprobe unavailable", zap.Error(err))
	}
	fmt.Printf("Frames: %d (motion %d, corrupt %d)\n", report.Frames, report.MotionFrames, report.CorruptFrames)

	for _, m := range report.Motions {
		start, end := m.Interval().Seconds(fps)
		fmt.Printf("Motion %s: %.2f - %.2f seconds (%d frames)\n", m.UUID, start, end, m.FramesCount())
	}

	if report.Empty() {
		fmt.Println("Motion not detected")
		return
	}
	for _, s := range report.Segments {
		start, end := s.Seconds(fps)
		fmt.Printf("Segment %s: %.2f - %.2f seconds\n", s, start, end)
	}
	fmt.Printf("Kept %.2f of %.2f seconds.\n", report.KeptDuration(), report.Duration())
}
