// Package metrics exposes the process's Prometheus instrumentation.
//
// Every collector is optional: components hold a Recorder interface and a
// nil Recorder means metrics collection is disabled, at zero overhead,
// exactly like the cache/NFS adapters' metrics interfaces this pattern is
// drawn from.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the instrumentation surface the transaction layer, the
// mirror scheduler and the handshake report through. Implementations must
// be safe for concurrent use.
type Recorder interface {
	// ObserveRoundTrip records one Fetch/Set round trip: its category, wall
	// time, retry attempts spent, and whether it ultimately failed.
	ObserveRoundTrip(category string, duration time.Duration, attempts int, err error)

	// ObserveRefreshCycle records one full Scheduler.RefreshOnce pass.
	ObserveRefreshCycle(duration time.Duration)

	// ObserveHandshake records the outcome of the identity + editor-mode
	// handshake performed once per Facade.Open.
	ObserveHandshake(duration time.Duration, success bool)
}

// prometheusRecorder is the Recorder implementation backed by
// client_golang collectors registered against a private Registry, so a
// process embedding this package never collides with, or depends on,
// prometheus.DefaultRegisterer.
type prometheusRecorder struct {
	roundTripDuration *prometheus.HistogramVec
	roundTripAttempts *prometheus.HistogramVec
	roundTripFailures *prometheus.CounterVec

	refreshCycleDuration prometheus.Histogram
	refreshCycleTotal    prometheus.Counter

	handshakeDuration prometheus.Histogram
	handshakeResults  *prometheus.CounterVec
}

// New builds a Recorder registered against reg. Callers that want metrics
// disabled should simply pass a nil Recorder to their components instead
// of calling New.
func New(reg *prometheus.Registry) Recorder {
	return &prometheusRecorder{
		roundTripDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "gt1000ctl_transaction_roundtrip_duration_milliseconds",
				Help: "Duration of Fetch/Set round trips, by effect category",
				Buckets: []float64{
					5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000,
				},
			},
			[]string{"category"},
		),
		roundTripAttempts: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gt1000ctl_transaction_roundtrip_attempts",
				Help:    "Poll attempts spent per Fetch/Set round trip, by effect category",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"category"},
		),
		roundTripFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gt1000ctl_transaction_roundtrip_failures_total",
				Help: "Fetch/Set round trips that returned an error, by effect category",
			},
			[]string{"category"},
		),
		refreshCycleDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gt1000ctl_mirror_refresh_cycle_duration_milliseconds",
				Help:    "Duration of one full state mirror refresh cycle",
				Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		refreshCycleTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gt1000ctl_mirror_refresh_cycles_total",
				Help: "Total number of state mirror refresh cycles completed",
			},
		),
		handshakeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gt1000ctl_handshake_duration_milliseconds",
				Help:    "Duration of the identity and editor-mode handshake",
				Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
		),
		handshakeResults: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gt1000ctl_handshake_results_total",
				Help: "Handshake outcomes, by result",
			},
			[]string{"result"}, // "success", "failure"
		),
	}
}

func (r *prometheusRecorder) ObserveRoundTrip(category string, duration time.Duration, attempts int, err error) {
	ms := float64(duration.Microseconds()) / 1000.0
	r.roundTripDuration.WithLabelValues(category).Observe(ms)
	r.roundTripAttempts.WithLabelValues(category).Observe(float64(attempts))
	if err != nil {
		r.roundTripFailures.WithLabelValues(category).Inc()
	}
}

func (r *prometheusRecorder) ObserveRefreshCycle(duration time.Duration) {
	r.refreshCycleDuration.Observe(float64(duration.Microseconds()) / 1000.0)
	r.refreshCycleTotal.Inc()
}

func (r *prometheusRecorder) ObserveHandshake(duration time.Duration, success bool) {
	r.handshakeDuration.Observe(float64(duration.Microseconds()) / 1000.0)
	result := "failure"
	if success {
		result = "success"
	}
	r.handshakeResults.WithLabelValues(result).Inc()
}
