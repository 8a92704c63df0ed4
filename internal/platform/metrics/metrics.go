package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	WorkflowsCreated prometheus.Counter
	ExchangesCreated prometheus.Counter

	// Submissions by outcome: accepted, verification_failed, rejected
	Submissions *prometheus.CounterVec

	ExchangesCompleted prometheus.Counter

	CallbackDeliveries prometheus.Counter
	CallbackFailures   prometheus.Counter

	ParticipateLatency prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		WorkflowsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vcapi_workflows_created_total",
			Help: "Total number of workflow definitions created",
		}),
		ExchangesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vcapi_exchanges_created_total",
			Help: "Total number of exchanges created",
		}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vcapi_submissions_total",
			Help: "Total number of presentation submissions by outcome",
		}, []string{"outcome"}),
		ExchangesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vcapi_exchanges_completed_total",
			Help: "Total number of exchanges that reached the completed state",
		}),
		CallbackDeliveries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vcapi_callback_deliveries_total",
			Help: "Total number of callback notifications delivered",
		}),
		CallbackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vcapi_callback_failures_total",
			Help: "Total number of callback notifications that failed",
		}),
		ParticipateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vcapi_participate_latency_seconds",
			Help:    "Latency of exchange participation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
