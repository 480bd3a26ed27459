// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     metrics
// Description: Prometheus metrics for recordings and jobs
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the dictation pipeline
type Metrics struct {
	registry *prometheus.Registry

	// Recording metrics
	Recordings      *prometheus.CounterVec
	EmptyRecordings prometheus.Counter
	DroppedFrames   prometheus.Counter
	AudioSeconds    prometheus.Histogram

	// Processing metrics
	ResampleDuration      prometheus.Histogram
	TranscriptionDuration *prometheus.HistogramVec
	TranscriptionFailures *prometheus.CounterVec
	Summaries             *prometheus.CounterVec
	SpeechRatio           prometheus.Histogram

	// Persistence metrics
	HistoryWrites   prometheus.Counter
	HistoryFailures prometheus.Counter

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// New creates all metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Recordings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diktat_recordings_total",
			Help: "Total number of processed recordings and uploads",
		}, []string{"source", "mode"}),
		EmptyRecordings: f.NewCounter(prometheus.CounterOpts{
			Name: "diktat_empty_recordings_total",
			Help: "Total number of recordings stopped without audio",
		}),
		DroppedFrames: f.NewCounter(prometheus.CounterOpts{
			Name: "diktat_dropped_frames_total",
			Help: "Total number of capture frames dropped on a full queue",
		}),
		AudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diktat_audio_duration_seconds",
			Help:    "Duration of processed audio",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		}),

		ResampleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diktat_resample_duration_seconds",
			Help:    "Time spent converting audio to 16 kHz",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		TranscriptionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diktat_transcription_duration_seconds",
			Help:    "Duration of transcription calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
		}, []string{"mode"}),
		TranscriptionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diktat_transcription_failures_total",
			Help: "Total number of transcriptions that produced an inline error",
		}, []string{"mode", "reason"}),
		Summaries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diktat_summaries_total",
			Help: "Summarization attempts by result",
		}, []string{"result"}),
		SpeechRatio: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diktat_speech_ratio",
			Help:    "Share of voiced frames per recording",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
		}),

		HistoryWrites: f.NewCounter(prometheus.CounterOpts{
			Name: "diktat_history_writes_total",
			Help: "Total number of entries saved to history",
		}),
		HistoryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "diktat_history_failures_total",
			Help: "Total number of failed history writes",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diktat_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
