package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codewandler/todosrv-go/core/metrics"
	"github.com/codewandler/todosrv-go/core/store"
)

// StoreMetrics implements store.Metrics.
type StoreMetrics struct {
	duration  *prometheus.HistogramVec
	completed *prometheus.CounterVec
}

// NewStoreMetrics registers the storage tier metrics with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	f := promauto.With(reg)
	return &StoreMetrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Time spent in one storage operation.",
			Buckets:   durationBuckets,
		}, []string{"op"}),
		completed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "ops_total",
			Help:      "Storage operations, by kind and outcome.",
		}, []string{"op", "success"}),
	}
}

func (m *StoreMetrics) OpDuration(op string) metrics.Timer {
	return newTimer(m.duration.WithLabelValues(op))
}

func (m *StoreMetrics) OpCompleted(op string, success bool) {
	m.completed.WithLabelValues(op, boolLabel(success)).Inc()
}

var _ store.Metrics = (*StoreMetrics)(nil)
