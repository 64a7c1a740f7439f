package store

import "github.com/codewandler/todosrv-go/core/metrics"

// Metrics is the instrumentation hook for the storage tier.
type Metrics interface {
	// OpDuration times one storage operation ("put" or "get").
	OpDuration(op string) metrics.Timer
	// OpCompleted counts one storage operation.
	OpCompleted(op string, success bool)
}

type nopMetrics struct{}

func (nopMetrics) OpDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) OpCompleted(string, bool)        {}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }
