// Package metrics defines small instrumentation interfaces so that core
// packages can emit measurements without depending on a concrete backend.
// The prometheus adapter provides real implementations; the nops here are
// the default.
package metrics

// Counter is a monotonically increasing value.
type Counter interface {
	Inc()
	Add(delta float64)
}

// Gauge is a value that can go up and down.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

// Timer measures one operation. Call ObserveDuration when the operation
// completes to record the elapsed time.
type Timer interface {
	ObserveDuration()
}
