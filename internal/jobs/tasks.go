package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/internal/digest"
	"github.com/planwise/planner-bot/internal/reminder"
)

const (
	TaskTypeEventReminder = "reminder:event"
	TaskTypeMorningDigest = "digest:morning"
	TaskTypeEveningDigest = "digest:evening"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// DigestPayload carries the digest kind so both cron entries share a handler.
type DigestPayload struct {
	Kind digest.Kind `json:"kind"`
}

// NewEventReminderTask wraps a reminder payload for delayed processing.
// Reminders are time-sensitive, so they go to the critical queue.
func NewEventReminderTask(payload reminder.Payload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeEventReminder, body, asynq.Queue(QueueCritical)), nil
}

// NewDigestTask builds the periodic digest trigger for the given kind.
func NewDigestTask(kind digest.Kind) (*asynq.Task, error) {
	body, err := json.Marshal(DigestPayload{Kind: kind})
	if err != nil {
		return nil, err
	}

	taskType := TaskTypeMorningDigest
	if kind == digest.KindEvening {
		taskType = TaskTypeEveningDigest
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault)), nil
}
