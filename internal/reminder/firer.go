package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/notify"
	"github.com/planwise/planner-bot/internal/store"
	"github.com/planwise/planner-bot/pkg/metrics"
)

const (
	channelName     = "event_reminder"
	eventTimeLayout = "15:04"
)

// Firer delivers a due reminder. The user record is re-read at fire time, so
// preferences and locale changed after scheduling are honored.
type Firer struct {
	store  store.UserStore
	gate   *gate.Gate
	i18n   *i18n.Manager
	sender notify.Sender
	log    *slog.Logger
}

// NewFirer wires reminder delivery.
func NewFirer(userStore store.UserStore, g *gate.Gate, manager *i18n.Manager, sender notify.Sender, log *slog.Logger) *Firer {
	if log == nil {
		log = slog.Default()
	}
	return &Firer{
		store:  userStore,
		gate:   g,
		i18n:   manager,
		sender: sender,
		log:    log,
	}
}

// Fire sends the reminder once. A user deleted since scheduling, or one who
// has disabled event reminders meanwhile, suppresses delivery without error.
func (f *Firer) Fire(ctx context.Context, payload Payload) error {
	user, err := f.store.Get(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			metrics.RecordNotification(channelName, "gated")
			f.log.Info("reminder user no longer exists, suppressing",
				slog.String("user_id", payload.UserID),
				slog.String("event_id", payload.EventID),
			)
			return nil
		}
		return fmt.Errorf("load user %s: %w", payload.UserID, err)
	}

	if !f.gate.Allows(user, gate.ChannelEventReminder) {
		metrics.RecordNotification(channelName, "gated")
		return nil
	}

	t := f.i18n.Translator(user.EffectiveLocale())
	text := fmt.Sprintf("%s\n\n\"%s\"\n%s",
		t.T("reminder.header"),
		payload.EventTitle,
		payload.StartTime.Format(eventTimeLayout),
	)

	if err := f.sender.Send(ctx, payload.ChatID, text); err != nil {
		metrics.RecordNotification(channelName, "error")
		return fmt.Errorf("deliver reminder for event %s: %w", payload.EventID, err)
	}

	metrics.RecordNotification(channelName, "sent")
	f.log.Info("reminder delivered",
		slog.String("user_id", payload.UserID),
		slog.String("event_id", payload.EventID),
	)
	return nil
}
