package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"action-classifier/application/classify"
)

// Recorder exports pipeline events as Prometheus metrics
type Recorder struct {
	FramesWritten    prometheus.Counter
	FramesDropped    *prometheus.CounterVec
	Segments         *prometheus.CounterVec
	InferenceSeconds prometheus.Histogram
	SegmentFrames    prometheus.Histogram
}

var _ classify.Observer = (*Recorder)(nil)

// NewRecorder registers the pipeline metrics with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		FramesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "action_classifier_frames_written_total",
			Help: "Total number of frames written into segment tensors",
		}),
		FramesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "action_classifier_frames_dropped_total",
			Help: "Total number of frames dropped, by reason",
		}, []string{"reason"}),
		Segments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "action_classifier_segments_total",
			Help: "Total number of segments processed, by status",
		}, []string{"status"}),
		InferenceSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "action_classifier_inference_duration_seconds",
			Help:    "Duration of a single segment inference",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SegmentFrames: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "action_classifier_segment_frames",
			Help:    "Number of frames written per segment",
			Buckets: prometheus.LinearBuckets(0, 50, 7),
		}),
	}
}

// FrameWritten implements classify.Observer
func (r *Recorder) FrameWritten() {
	r.FramesWritten.Inc()
}

// FrameDropped implements classify.Observer
func (r *Recorder) FrameDropped(reason classify.DropReason) {
	r.FramesDropped.WithLabelValues(string(reason)).Inc()
}

// SegmentFinished implements classify.Observer
func (r *Recorder) SegmentFinished(status classify.SegmentStatus, frames int, inference time.Duration) {
	r.Segments.WithLabelValues(string(status)).Inc()
	r.SegmentFrames.Observe(float64(frames))
	if status != classify.SegmentSkipped {
		r.InferenceSeconds.Observe(inference.Seconds())
	}
}
