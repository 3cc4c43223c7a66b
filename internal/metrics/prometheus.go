package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects counters for one batch run on its own registry, so runs
// and tests never share state.
type Metrics struct {
	Registry *prometheus.Registry

	FilesProcessedTotal *prometheus.CounterVec
	FramesScannedTotal  prometheus.Counter
	MotionFramesTotal   prometheus.Counter
	CorruptFramesTotal  prometheus.Counter
	SegmentsWritten     prometheus.Counter
	StageDuration       *prometheus.HistogramVec
	ActiveWorkers       prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		FilesProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "motiontrim_files_processed_total",
			Help: "Total number of input files processed, by status",
		}, []string{"status"}),
		FramesScannedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "motiontrim_frames_scanned_total",
			Help: "Total number of frames classified",
		}),
		MotionFramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "motiontrim_motion_frames_total",
			Help: "Total number of frames classified as motion",
		}),
		CorruptFramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "motiontrim_corrupt_frames_total",
			Help: "Total number of frames that could not be compared",
		}),
		SegmentsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "motiontrim_segments_written_total",
			Help: "Total number of motion segments written to outputs",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "motiontrim_stage_duration_seconds",
			Help:    "Duration of each per-file pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "motiontrim_active_workers",
			Help: "Number of workers currently processing a file",
		}),
	}
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
