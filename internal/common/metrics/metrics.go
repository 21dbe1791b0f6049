// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DialogTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_turns_total",
			Help: "Total number of dialog code hook invocations by intent and resulting action",
		},
		[]string{"intent", "action"},
	)

	SlotValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_slot_validation_failures_total",
			Help: "Total number of slot validation failures by slot",
		},
		[]string{"slot"},
	)

	RequestsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dining_requests_enqueued_total",
			Help: "Total number of recommendation requests pushed to the queue",
		},
		[]string{"intent"},
	)

	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_messages_processed_total",
			Help: "Total number of queue messages handled by the recommendation worker",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_notifications_sent_total",
			Help: "Total number of recommendation notifications sent",
		},
		[]string{"kind"},
	)

	MessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_message_duration_seconds",
			Help: "Duration of queue message processing in seconds",
		},
		[]string{"outcome"},
	)
)
