// Package metrics provides Prometheus metrics for the call pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "callbridge"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	CallsTotal  prometheus.Counter
	CallsActive prometheus.Gauge
	CallsDialed prometheus.Counter

	FramesReceived     prometheus.Counter
	AudioBytesReceived prometheus.Counter
	FramesMalformed    prometheus.Counter

	TranscriptsFinal prometheus.Counter

	TurnsStarted    prometheus.Counter
	TurnsCompleted  prometheus.Counter
	TurnsShortened  *prometheus.CounterVec // short-circuited turns, by stage
	GenerateLatency prometheus.Histogram
	SynthLatency    prometheus.Histogram
}

// Default is the process-wide metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of call streams started",
		}),
		CallsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calls_active",
			Help:      "Number of currently live call streams",
		}),
		CallsDialed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_dialed_total",
			Help:      "Total number of outbound calls created via /make_call",
		}),
		FramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_received_total",
			Help:      "Total number of media frames received from the carrier",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total decoded audio bytes received from the carrier",
		}),
		FramesMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_malformed_total",
			Help:      "Total number of socket envelopes that failed to decode",
		}),
		TranscriptsFinal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_final_total",
			Help:      "Total number of finalized transcripts received",
		}),
		TurnsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_started_total",
			Help:      "Total number of conversation turns started",
		}),
		TurnsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_completed_total",
			Help:      "Total number of turns that reached playback injection",
		}),
		TurnsShortened: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_shortened_total",
			Help:      "Total number of turns short-circuited before playback",
		}, []string{"stage"}),
		GenerateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_latency_seconds",
			Help:      "Latency of text generation per turn",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		SynthLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_seconds",
			Help:      "Latency of speech synthesis per turn",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}
