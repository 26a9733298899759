package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/internal/reminder"
)

// ReminderHandler delivers one due event reminder.
type ReminderHandler struct {
	firer *reminder.Firer
	log   *slog.Logger
}

func NewReminderHandler(firer *reminder.Firer, log *slog.Logger) *ReminderHandler {
	return &ReminderHandler{firer: firer, log: log}
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload reminder.Payload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "reminder: failed to decode payload",
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	return h.firer.Fire(ctx, payload)
}
