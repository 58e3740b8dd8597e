// Package metrics defines the Prometheus collectors for the registration
// endpoints.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for a registration attempt.
const (
	OutcomeCreated  = "created"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics provides observability for the registration endpoints.
// Tracks attempts by variant and outcome, and request durations.
type Metrics struct {
	Registrations        *prometheus.CounterVec
	RegistrationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered with reg.
// Pass prometheus.DefaultRegisterer in main and a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "learnfast_registrations_total",
			Help: "Registration attempts by variant (quick, full) and outcome",
		}, []string{"variant", "outcome"}),
		RegistrationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnfast_registration_duration_seconds",
			Help:    "Duration of registration requests, including password hashing",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"variant"}),
	}
}

// ObserveRegistration records one attempt. Call with time.Now() taken at
// the start of the request.
func (m *Metrics) ObserveRegistration(variant, outcome string, start time.Time) {
	m.Registrations.WithLabelValues(variant, outcome).Inc()
	m.RegistrationDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
}
