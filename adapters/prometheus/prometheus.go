// Package prometheus implements the instrumentation interfaces of the core
// packages on top of prometheus/client_golang. Construct the metric sets
// against a registry and pass them into the respective configs.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/todosrv-go/core/metrics"
)

const namespace = "todosrv"

var durationBuckets = []float64{
	.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5,
}

// All bundles every metric set the app can carry.
type All struct {
	Actor *ActorMetrics
	Store *StoreMetrics
}

// NewAll registers all metric sets with reg.
func NewAll(reg prometheus.Registerer) *All {
	return &All{
		Actor: NewActorMetrics(reg),
		Store: NewStoreMetrics(reg),
	}
}

type histoTimer struct {
	t *prometheus.Timer
}

func (h histoTimer) ObserveDuration() { h.t.ObserveDuration() }

func newTimer(o prometheus.Observer) metrics.Timer {
	return histoTimer{t: prometheus.NewTimer(o)}
}
