package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the counters.
const (
	OutcomeAccepted = "accepted"
	OutcomeError    = "error"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Signups by outcome: "accepted", an error code, or "error".
	Signups *prometheus.CounterVec

	// Ride requests by outcome.
	RideRequests *prometheus.CounterVec

	// Application operation latency by operation name.
	OperationLatency *prometheus.HistogramVec

	// Domain events published, by type and result.
	EventsPublished *prometheus.CounterVec

	// Idempotent replays served, by route.
	IdempotentReplays *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Signups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ride_hail_signups_total",
			Help: "Signup attempts by outcome",
		}, []string{"outcome"}),

		RideRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ride_hail_ride_requests_total",
			Help: "Ride request attempts by outcome",
		}, []string{"outcome"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ride_hail_operation_duration_seconds",
			Help:    "Duration of application operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ride_hail_events_published_total",
			Help: "Domain events handed to the publisher, by type and result",
		}, []string{"type", "result"}),

		IdempotentReplays: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ride_hail_idempotent_replays_total",
			Help: "Responses replayed from the idempotency store",
		}, []string{"route"}),
	}
}

func (m *Metrics) IncSignup(outcome string) {
	if m != nil {
		m.Signups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncRideRequest(outcome string) {
	if m != nil {
		m.RideRequests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncEventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) IncIdempotentReplay(route string) {
	if m != nil {
		m.IdempotentReplays.WithLabelValues(route).Inc()
	}
}
