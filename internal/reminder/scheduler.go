// Package reminder converts an event's lead-time request into a delayed,
// cancellable delivery.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/pkg/metrics"
)

// Payload is the reminder content captured by value at scheduling time. Later
// edits to the event do not change what an already-registered reminder says.
type Payload struct {
	UserID     string    `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	StartTime  time.Time `json:"start_time"`
}

// Executor registers a payload for execution at an absolute time and can
// withdraw it by id before it fires.
type Executor interface {
	RunAt(ctx context.Context, id string, fireAt time.Time, payload Payload) error
	Cancel(ctx context.Context, id string) error
}

// Scheduler applies the lead-time policy and tracks a cancellation handle per
// event, so deleting or re-scheduling an event withdraws its pending reminder.
type Scheduler struct {
	executor Executor
	gate     *gate.Gate
	log      *slog.Logger

	mu      sync.Mutex
	handles map[string]handle // userID/eventID

	now func() time.Time
}

// handle tracks one registered reminder. fireAt lets the map shed entries for
// reminders that have already fired.
type handle struct {
	id     string
	fireAt time.Time
}

// NewScheduler builds a Scheduler over the given executor.
func NewScheduler(executor Executor, g *gate.Gate, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		executor: executor,
		gate:     g,
		log:      log,
		handles:  make(map[string]handle),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Schedule registers one reminder for the event. A fire time at or before now
// is silently dropped: never fired, never an error. Scheduling again for the
// same event withdraws the previous reminder first.
func (s *Scheduler) Schedule(ctx context.Context, user *domain.User, event domain.Event) error {
	offset, ok := event.Reminder.Offset()
	if !ok {
		if event.Reminder != domain.ReminderNone && event.Reminder != "" {
			metrics.RecordReminderDropped("unknown_lead")
			s.log.Warn("unknown reminder lead time, dropping",
				slog.String("event_id", event.ID),
				slog.String("lead", string(event.Reminder)),
			)
		}
		return nil
	}

	if !s.gate.Allows(user, gate.ChannelEventReminder) {
		metrics.RecordReminderDropped("disabled")
		return nil
	}

	fireAt := event.StartTime.Add(-offset)
	if !fireAt.After(s.now()) {
		metrics.RecordReminderDropped("past")
		s.log.Debug("reminder fire time already passed, dropping",
			slog.String("user_id", user.ID),
			slog.String("event_id", event.ID),
			slog.Time("fire_at", fireAt),
		)
		return nil
	}

	// A second schedule for the same event supersedes the first.
	if err := s.Cancel(ctx, user.ID, event.ID); err != nil {
		s.log.Warn("failed to withdraw superseded reminder",
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}

	id := uuid.NewString()
	payload := Payload{
		UserID:     user.ID,
		ChatID:     user.ChatID,
		EventID:    event.ID,
		EventTitle: event.Title,
		StartTime:  event.StartTime,
	}

	if err := s.executor.RunAt(ctx, id, fireAt, payload); err != nil {
		return fmt.Errorf("register reminder for event %s: %w", event.ID, err)
	}

	s.mu.Lock()
	s.pruneLocked()
	s.handles[handleKey(user.ID, event.ID)] = handle{id: id, fireAt: fireAt}
	s.mu.Unlock()

	metrics.RecordReminderScheduled()
	s.log.Info("reminder scheduled",
		slog.String("user_id", user.ID),
		slog.String("event_id", event.ID),
		slog.Time("fire_at", fireAt),
	)
	return nil
}

// Cancel withdraws the pending reminder for the event, if any. Unknown events
// are a no-op.
func (s *Scheduler) Cancel(ctx context.Context, userID, eventID string) error {
	key := handleKey(userID, eventID)

	s.mu.Lock()
	s.pruneLocked()
	h, ok := s.handles[key]
	if ok {
		delete(s.handles, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}

	if err := s.executor.Cancel(ctx, h.id); err != nil {
		return fmt.Errorf("cancel reminder %s: %w", h.id, err)
	}

	metrics.RecordReminderCancelled()
	return nil
}

// Pending reports whether the event still has a reminder waiting to fire.
func (s *Scheduler) Pending(userID, eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	_, ok := s.handles[handleKey(userID, eventID)]
	return ok
}

// pruneLocked drops handles whose fire time has passed. The executor has
// already delivered (or is delivering) those reminders, so there is nothing
// left to cancel. Caller must hold mu.
func (s *Scheduler) pruneLocked() {
	now := s.now()
	for key, h := range s.handles {
		if !h.fireAt.After(now) {
			delete(s.handles, key)
		}
	}
}

func handleKey(userID, eventID string) string {
	return userID + "/" + eventID
}
