// Package metrics exposes prometheus collectors for the notification pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Outbound notifications labeled by channel and delivery status",
		},
		[]string{"channel", "status"},
	)
	remindersScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Event reminders registered with the delayed executor",
		},
	)
	remindersDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_dropped_total",
			Help: "Event reminders never registered, labeled by reason",
		},
		[]string{"reason"},
	)
	remindersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_cancelled_total",
			Help: "Pending reminders withdrawn before their fire time",
		},
	)
	digestFanoutSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_fanout_duration_seconds",
			Help:    "Duration of a full digest fan-out pass",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"digest"},
	)
	webhookPayloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_payloads_total",
			Help: "Mini-app webhook payloads labeled by type and outcome",
		},
		[]string{"type", "status"},
	)
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot command handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	knownUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "known_users",
			Help: "Number of user records in the store",
		},
	)
)

// RecordNotification counts an outbound notification attempt.
func RecordNotification(channel, status string) {
	if channel == "" {
		channel = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	notificationsSentTotal.WithLabelValues(channel, status).Inc()
}

// RecordReminderScheduled counts a registered reminder.
func RecordReminderScheduled() {
	remindersScheduledTotal.Inc()
}

// RecordReminderDropped counts a reminder that was never registered.
func RecordReminderDropped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	remindersDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordReminderCancelled counts a withdrawn reminder.
func RecordReminderCancelled() {
	remindersCancelledTotal.Inc()
}

// RecordDigestFanout records the duration of a digest pass.
func RecordDigestFanout(digest string, duration time.Duration) {
	if digest == "" {
		digest = "unknown"
	}
	digestFanoutSeconds.WithLabelValues(digest).Observe(duration.Seconds())
}

// RecordWebhookPayload counts an inbound mini-app payload.
func RecordWebhookPayload(payloadType, status string) {
	if payloadType == "" {
		payloadType = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	webhookPayloadsTotal.WithLabelValues(payloadType, status).Inc()
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// SetKnownUsers updates the user count gauge.
func SetKnownUsers(n int) {
	knownUsers.Set(float64(n))
}
