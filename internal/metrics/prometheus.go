package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the bot
type Metrics struct {
	// Inbound events by kind: start, help, audio
	EventsReceived *prometheus.CounterVec

	// Audio pipeline outcomes
	AudioProcessed prometheus.Counter
	AudioFailures  *prometheus.CounterVec

	// Per-step latency: download, decode, encode, upload
	StageDuration *prometheus.HistogramVec

	InputSize  prometheus.Histogram
	OutputSize prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audio_bot_events_received_total",
			Help: "Total number of handled updates by kind",
		}, []string{"kind"}),

		AudioProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "audio_bot_audio_processed_total",
			Help: "Total number of audio messages answered with processed audio",
		}),
		AudioFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audio_bot_audio_failures_total",
			Help: "Total number of audio messages answered with an error, by error kind",
		}, []string{"kind"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audio_bot_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"stage"}),

		InputSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audio_bot_input_size_bytes",
			Help:    "Size of downloaded audio files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
		OutputSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audio_bot_output_size_bytes",
			Help:    "Size of uploaded processed audio files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
	}
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Event counts one received update of the given kind.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(kind).Inc()
}

// Failure counts one failed audio message.
func (m *Metrics) Failure(kind string) {
	if m == nil {
		return
	}
	m.AudioFailures.WithLabelValues(kind).Inc()
}

// Success counts one processed audio message.
func (m *Metrics) Success(inBytes, outBytes int) {
	if m == nil {
		return
	}
	m.AudioProcessed.Inc()
	m.InputSize.Observe(float64(inBytes))
	m.OutputSize.Observe(float64(outBytes))
}
