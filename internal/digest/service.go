package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/notify"
	"github.com/planwise/planner-bot/internal/store"
	"github.com/planwise/planner-bot/pkg/metrics"
)

// Kind distinguishes the two digest triggers.
type Kind string

const (
	KindMorning Kind = "morning"
	KindEvening Kind = "evening"
)

// Service fans a digest trigger out over every known user.
type Service struct {
	store    store.UserStore
	gate     *gate.Gate
	composer *Composer
	sender   notify.Sender
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the digest fan-out.
func NewService(userStore store.UserStore, g *gate.Gate, composer *Composer, sender notify.Sender, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    userStore,
		gate:     g,
		composer: composer,
		sender:   sender,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes one fan-out pass for the given digest kind. Delivery failures
// for one user are logged and do not stop the pass; the returned error only
// reflects the inability to list users at all.
func (s *Service) Run(ctx context.Context, kind Kind) error {
	started := s.now()
	defer func() {
		metrics.RecordDigestFanout(string(kind), time.Since(started))
	}()

	users, err := s.store.All(ctx)
	if err != nil {
		s.log.Error("digest fan-out cannot list users", slog.String("digest", string(kind)), slog.Any("error", err))
		return err
	}
	metrics.SetKnownUsers(len(users))

	sent := 0
	for _, user := range users {
		if !s.gate.Allows(user, channelFor(kind)) {
			metrics.RecordNotification(string(kind), "gated")
			continue
		}

		text := s.compose(user, kind, started)
		if err := s.sender.Send(ctx, user.ChatID, text); err != nil {
			metrics.RecordNotification(string(kind), "error")
			s.log.Error("digest delivery failed, continuing fan-out",
				slog.String("digest", string(kind)),
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
			continue
		}

		metrics.RecordNotification(string(kind), "sent")
		sent++
	}

	s.log.Info("digest fan-out finished",
		slog.String("digest", string(kind)),
		slog.Int("users", len(users)),
		slog.Int("sent", sent),
	)
	return nil
}

func (s *Service) compose(user *domain.User, kind Kind, now time.Time) string {
	if kind == KindEvening {
		return s.composer.Evening(user, now)
	}
	return s.composer.Morning(user, now)
}

func channelFor(kind Kind) gate.Channel {
	if kind == KindEvening {
		return gate.ChannelEveningDigest
	}
	return gate.ChannelMorningDigest
}
