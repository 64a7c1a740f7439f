package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/metrics"
)

// ActorMetrics implements actor.Metrics.
type ActorMetrics struct {
	duration      *prometheus.HistogramVec
	processed     *prometheus.CounterVec
	panics        *prometheus.CounterVec
	mailbox       *prometheus.GaugeVec
	schedInflight *prometheus.GaugeVec
	schedTasks    *prometheus.CounterVec
}

// NewActorMetrics registers the actor runtime metrics with reg.
func NewActorMetrics(reg prometheus.Registerer) *ActorMetrics {
	f := promauto.With(reg)
	return &ActorMetrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "message_duration_seconds",
			Help:      "Time spent handling one message.",
			Buckets:   durationBuckets,
		}, []string{"msg_type"}),
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "messages_processed_total",
			Help:      "Messages handled, by type and outcome.",
		}, []string{"msg_type", "success"}),
		panics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "message_panics_total",
			Help:      "Handler panics, by message type.",
		}, []string{"msg_type"}),
		mailbox: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "mailbox_depth",
			Help:      "Messages waiting in the mailbox, per actor.",
		}, []string{"actor_id"}),
		schedInflight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "scheduler_inflight_tasks",
			Help:      "Background tasks currently running, per actor.",
		}, []string{"actor_id"}),
		schedTasks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "scheduler_tasks_total",
			Help:      "Finished background tasks, per actor and outcome.",
		}, []string{"actor_id", "success"}),
	}
}

func (m *ActorMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.duration.WithLabelValues(msgType))
}

func (m *ActorMetrics) MessageProcessed(msgType string, success bool) {
	m.processed.WithLabelValues(msgType, boolLabel(success)).Inc()
}

func (m *ActorMetrics) MessagePanic(msgType string) {
	m.panics.WithLabelValues(msgType).Inc()
}

func (m *ActorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailbox.WithLabelValues(actorID).Set(float64(depth))
}

func (m *ActorMetrics) SchedulerInflight(actorID string) metrics.Gauge {
	return m.schedInflight.WithLabelValues(actorID)
}

func (m *ActorMetrics) SchedulerTasks(actorID string, success bool) metrics.Counter {
	return m.schedTasks.WithLabelValues(actorID, boolLabel(success))
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var _ actor.Metrics = (*ActorMetrics)(nil)
