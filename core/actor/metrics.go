package actor

import "github.com/codewandler/todosrv-go/core/metrics"

// Metrics is the instrumentation hook for the actor runtime.
// All methods must be safe for concurrent use.
type Metrics interface {
	// MessageDuration times the handling of one message.
	MessageDuration(msgType string) metrics.Timer
	// MessageProcessed counts a handled message.
	MessageProcessed(msgType string, success bool)
	// MessagePanic counts a handler panic.
	MessagePanic(msgType string)
	// MailboxDepth reports the current mailbox queue depth.
	MailboxDepth(actorID string, depth int)
	// SchedulerInflight returns the gauge of in-flight background tasks.
	SchedulerInflight(actorID string) metrics.Gauge
	// SchedulerTasks returns the counter of finished background tasks.
	SchedulerTasks(actorID string, success bool) metrics.Counter
}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) metrics.Timer      { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)             {}
func (nopMetrics) MessagePanic(string)                       {}
func (nopMetrics) MailboxDepth(string, int)                  {}
func (nopMetrics) SchedulerInflight(string) metrics.Gauge    { return metrics.NopGauge() }
func (nopMetrics) SchedulerTasks(string, bool) metrics.Counter {
	return metrics.NopCounter()
}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }
