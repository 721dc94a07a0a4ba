// Package metrics holds the Prometheus collectors for the intake service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups all collectors so handlers and services share one set.
type Metrics struct {
	DraftsSaved     prometheus.Counter
	StepAdvances    *prometheus.CounterVec
	ClaimsSubmitted *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors against the given registerer.
// Tests pass a fresh prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DraftsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "claimshub_drafts_saved_total",
			Help: "Total number of draft write-through saves",
		}),
		StepAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimshub_step_advances_total",
			Help: "Successful step advancements by step",
		}, []string{"step"}),
		ClaimsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claimshub_claims_submitted_total",
			Help: "Final claim submissions by stored status",
		}, []string{"status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimshub_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
	}
}

// ObserveRequest records one request's latency under its route pattern.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// IncDraftSaved increments the draft save counter.
func (m *Metrics) IncDraftSaved() {
	if m == nil {
		return
	}
	m.DraftsSaved.Inc()
}

// IncStepAdvance increments the advancement counter for a step.
func (m *Metrics) IncStepAdvance(step string) {
	if m == nil {
		return
	}
	m.StepAdvances.WithLabelValues(step).Inc()
}

// IncClaimSubmitted increments the submission counter for a stored status.
func (m *Metrics) IncClaimSubmitted(status string) {
	if m == nil {
		return
	}
	m.ClaimsSubmitted.WithLabelValues(status).Inc()
}
