// Package metrics provides Prometheus instrumentation for verifications.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the namespace for all metrics.
const MetricsNamespace = "addressproof"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Recorder holds the verification metrics. It satisfies verifier.Observer.
type Recorder struct {
	VerificationsTotal *prometheus.CounterVec
	OCRDuration        *prometheus.HistogramVec
	OCRRequestsTotal   *prometheus.CounterVec
	MatchStrategyTotal *prometheus.CounterVec
}

// NewRecorder creates and registers the metrics on reg. A nil reg uses the
// default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "verifications_total",
				Help:      "Total number of verifications by outcome",
			},
			[]string{"outcome"},
		),
		OCRDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "ocr_duration_seconds",
				Help:      "Duration of OCR calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"engine"},
		),
		OCRRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "ocr_requests_total",
				Help:      "Total number of OCR calls by engine and status",
			},
			[]string{"engine", "status"},
		),
		MatchStrategyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "match_strategy_total",
				Help:      "Total number of successful matches by matcher strategy",
			},
			[]string{"strategy"},
		),
	}
}

// ObserveOCR records one OCR call.
func (r *Recorder) ObserveOCR(engine string, duration time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	r.OCRDuration.WithLabelValues(engine).Observe(duration.Seconds())
	r.OCRRequestsTotal.WithLabelValues(engine, status).Inc()
}

// ObserveMatch records a successful match.
func (r *Recorder) ObserveMatch(strategy string) {
	r.MatchStrategyTotal.WithLabelValues(strategy).Inc()
}

// ObserveVerification records the outcome of a finished verification.
func (r *Recorder) ObserveVerification(outcome string) {
	r.VerificationsTotal.WithLabelValues(outcome).Inc()
}
