// Package webhook ingests state pushed by the Telegram mini-app.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/planwise/planner-bot/internal/domain"
	apperrors "github.com/planwise/planner-bot/internal/errors"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/notify"
	"github.com/planwise/planner-bot/internal/reminder"
	"github.com/planwise/planner-bot/internal/store"
	"github.com/planwise/planner-bot/pkg/metrics"
)

const maxBodyBytes = 1 << 20

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Handler applies mini-app payloads to the user store and triggers the side
// effects they imply (reminder scheduling, acknowledgement messages).
type Handler struct {
	store     store.UserStore
	scheduler *reminder.Scheduler
	sender    notify.Sender
	i18n      *i18n.Manager
	errs      *apperrors.Handler
	validate  *validator.Validate
	log       *slog.Logger
	now       func() time.Time
}

// NewHandler wires webhook ingestion.
func NewHandler(
	userStore store.UserStore,
	scheduler *reminder.Scheduler,
	sender notify.Sender,
	manager *i18n.Manager,
	errs *apperrors.Handler,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:     userStore,
		scheduler: scheduler,
		sender:    sender,
		i18n:      manager,
		errs:      errs,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// ServeHTTP handles POST /webhook. Validation failures answer 400 before any
// state changes; an unknown user id creates the record with defaults first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{Success: false, Error: "method not allowed"})
		return
	}

	var env Envelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&env); err != nil {
		metrics.RecordWebhookPayload("unknown", "rejected")
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid payload"})
		return
	}
	if err := h.validate.Struct(env); err != nil {
		metrics.RecordWebhookPayload(string(env.Type), "rejected")
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid payload"})
		return
	}

	chatID, err := strconv.ParseInt(env.UserID, 10, 64)
	if err != nil {
		metrics.RecordWebhookPayload(string(env.Type), "rejected")
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid user id"})
		return
	}

	mutate, err := h.mutation(env)
	if err != nil {
		metrics.RecordWebhookPayload(string(env.Type), "rejected")
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid payload"})
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetOrCreate(ctx, env.UserID, chatID, ""); err != nil {
		h.fail(ctx, w, env.Type, err)
		return
	}

	user, err := h.store.Mutate(ctx, env.UserID, mutate)
	if err != nil {
		h.fail(ctx, w, env.Type, err)
		return
	}

	h.afterApply(ctx, env, user)

	metrics.RecordWebhookPayload(string(env.Type), "applied")
	writeJSON(w, http.StatusOK, response{Success: true})
}

// mutation translates the envelope into a store mutation. Decode and
// validation errors are returned before any state is touched.
func (h *Handler) mutation(env Envelope) (func(u *domain.User) error, error) {
	now := h.now().UTC()

	switch env.Type {
	case TypeTask:
		var task domain.Task
		if err := h.decode(env.Data, &task); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			u.Tasks = append(u.Tasks, task)
			return nil
		}, nil

	case TypeTaskStatusChange:
		var data TaskStatusChangeData
		if err := h.decode(env.Data, &data); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			task := u.TaskByID(data.Task.ID)
			if task == nil {
				h.log.Warn("status change for unknown task",
					slog.String("user_id", u.ID),
					slog.String("task_id", data.Task.ID),
				)
				return nil
			}
			task.SetStatus(data.Task.Status, now)
			return nil
		}, nil

	case TypeEvent:
		var event domain.Event
		if err := h.decode(env.Data, &event); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			u.Events = append(u.Events, event)
			return nil
		}, nil

	case TypeHabit:
		var habit domain.Habit
		if err := h.decode(env.Data, &habit); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			u.Habits = append(u.Habits, habit)
			return nil
		}, nil

	case TypeHabitCompletion:
		var data HabitCompletionData
		if err := h.decode(env.Data, &data); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			habit := u.HabitByID(data.Habit.ID)
			if habit == nil {
				h.log.Warn("completion for unknown habit",
					slog.String("user_id", u.ID),
					slog.String("habit_id", data.Habit.ID),
				)
				return nil
			}
			habit.MarkCompletion(now, data.Completed, now)
			return nil
		}, nil

	case TypeNotificationSettings:
		var data NotificationSettingsData
		if err := h.decode(env.Data, &data); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			u.Preferences = data.Settings
			return nil
		}, nil

	case TypeLanguageChange:
		var data LanguageChangeData
		if err := h.decode(env.Data, &data); err != nil {
			return nil, err
		}
		return func(u *domain.User) error {
			u.Locale = data.Language
			return nil
		}, nil
	}

	return nil, apperrors.NewValidationError("unknown payload type: " + string(env.Type))
}

func (h *Handler) decode(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError("malformed payload data").WithCause(err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.NewValidationError("invalid payload data").WithCause(err)
	}
	return nil
}

// afterApply runs the side effects of an applied payload: reminder scheduling
// for fresh events and the acknowledgement message for non-silent types. Their
// failures are logged but never fail the request, which already committed.
func (h *Handler) afterApply(ctx context.Context, env Envelope, user *domain.User) {
	if env.Type == TypeEvent {
		var event domain.Event
		if err := json.Unmarshal(env.Data, &event); err == nil {
			if err := h.scheduler.Schedule(ctx, user, event); err != nil {
				h.errs.Handle(ctx, err)
			}
		}
	}

	if env.Type.Silent() {
		return
	}

	t := h.i18n.Translator(user.EffectiveLocale())
	if err := h.sender.Send(ctx, user.ChatID, t.T("open_app")); err != nil {
		h.log.Warn("webhook acknowledgement failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, payloadType Type, err error) {
	h.errs.Handle(ctx, err)
	metrics.RecordWebhookPayload(string(payloadType), "error")
	writeJSON(w, http.StatusInternalServerError, response{Success: false, Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
