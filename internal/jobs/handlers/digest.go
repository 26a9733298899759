// Package handlers holds the asynq task handlers for the background worker.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/planwise/planner-bot/internal/digest"
	"github.com/planwise/planner-bot/internal/jobs"
)

// DigestHandler runs one digest fan-out pass per cron trigger.
type DigestHandler struct {
	service *digest.Service
	log     *slog.Logger
}

func NewDigestHandler(service *digest.Service, log *slog.Logger) *DigestHandler {
	return &DigestHandler{service: service, log: log}
}

func (h *DigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "digest: failed to decode payload",
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "digest trigger",
			slog.String("task_type", t.Type()),
			slog.String("kind", string(payload.Kind)),
		)
	}

	return h.service.Run(ctx, payload.Kind)
}
