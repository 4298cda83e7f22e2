package metricsvc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the web app.
type Metrics struct {
	// access guard
	GuardDecisions *prometheus.CounterVec

	// outbound backend calls
	BackendCalls   *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec

	// user flows
	Logins      *prometheus.CounterVec
	Submissions *prometheus.CounterVec
	Enlistments *prometheus.CounterVec
	LiveEngines prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered on `registry`.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclass_guard_decisions_total",
				Help: "Access guard decisions by action and reason",
			},
			[]string{"action", "reason"},
		),

		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclass_backend_calls_total",
				Help: "Backend API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		BackendLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tclass_backend_latency_seconds",
				Help:    "Backend API call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"endpoint"},
		),

		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclass_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclass_form_submissions_total",
				Help: "Admission and vocational form submissions by form and outcome",
			},
			[]string{"form", "outcome"},
		),
		Enlistments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tclass_enlistments_total",
				Help: "Subject enlistments by whether the backend confirmed them",
			},
			[]string{"confirmed"},
		),
		LiveEngines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tclass_form_engines",
				Help: "Number of live form engines",
			},
		),
	}
}
