package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sampad/pkg/validation"
)

type Metrics struct {
	RegistrationsCreated *prometheus.CounterVec
	ValidationFailures   *prometheus.CounterVec
	PersistenceConflicts *prometheus.CounterVec
	RegisterDuration     prometheus.Histogram
}

// New registers the registration metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sampad_registrations_created_total",
			Help: "Total number of registrations created, by fee tier",
		}, []string{"tier"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sampad_registration_validation_failures_total",
			Help: "Field violations reported to submitters, by field and kind",
		}, []string{"field", "kind"}),
		PersistenceConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sampad_registration_persistence_conflicts_total",
			Help: "Unique violations caught at insert after the lookup passed",
		}, []string{"field"}),
		RegisterDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sampad_registration_register_duration_seconds",
			Help:    "Duration of the register transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated(tier string) {
	m.RegistrationsCreated.WithLabelValues(tier).Inc()
}

func (m *Metrics) RecordValidationFailures(errs validation.FieldErrors) {
	for _, e := range errs {
		m.ValidationFailures.WithLabelValues(e.Field, string(e.Kind)).Inc()
	}
}

func (m *Metrics) IncrementConflict(field string) {
	m.PersistenceConflicts.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
