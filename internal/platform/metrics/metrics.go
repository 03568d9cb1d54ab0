package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SharesIssued          prometheus.Counter
	Evaluations           *prometheus.CounterVec
	Disbursements         prometheus.Counter
	DisbursementConflicts prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SharesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinky_shares_issued_total",
			Help: "Total number of share tokens minted",
		}),
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pinky_evaluations_total",
			Help: "Total number of evaluations recorded, by verdict",
		}, []string{"verdict"}),
		Disbursements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinky_point_disbursements_total",
			Help: "Total number of successful point disbursements",
		}),
		DisbursementConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinky_point_disbursement_conflicts_total",
			Help: "Disbursement attempts rejected as already paid",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinky_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}
