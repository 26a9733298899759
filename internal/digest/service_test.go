package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/store"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[int64][]string), failFor: make(map[int64]error)}
}

func (r *recordingSender) Send(_ context.Context, chatID int64, text string, _ ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failFor[chatID]; err != nil {
		return err
	}
	r.sent[chatID] = append(r.sent[chatID], text)
	return nil
}

func newService(t *testing.T, snap *store.MemorySnapshot, sender *recordingSender) (*Service, *store.Store) {
	t.Helper()

	manager, err := i18n.LoadFromDir("../i18n/locales", domain.LocaleRU)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	s := store.New(context.Background(), snap, nil)
	svc := NewService(s, gate.New(nil, true), NewComposer(manager), sender, nil)
	svc.SetClock(func() time.Time {
		return time.Date(2025, time.June, 2, 7, 0, 0, 0, time.UTC)
	})
	return svc, s
}

func TestRunSkipsDisabledUsers(t *testing.T) {
	ctx := context.Background()
	sender := newRecordingSender()
	svc, s := newService(t, store.NewMemorySnapshot(), sender)

	if _, err := s.GetOrCreate(ctx, "1", 100, "On"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrCreate(ctx, "2", 200, "Off"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mutate(ctx, "2", func(u *domain.User) error {
		u.Preferences.MorningDigestEnabled = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Run(ctx, KindMorning); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sender.sent[100]) != 1 {
		t.Errorf("enabled user received %d messages, expected 1", len(sender.sent[100]))
	}
	if len(sender.sent[200]) != 0 {
		t.Errorf("disabled user received %d messages, expected 0", len(sender.sent[200]))
	}
}

func TestRunIsolatesPerUserFailures(t *testing.T) {
	ctx := context.Background()
	sender := newRecordingSender()
	svc, s := newService(t, store.NewMemorySnapshot(), sender)

	// User ids sort lexicographically, so the failing user runs first.
	if _, err := s.GetOrCreate(ctx, "a", 100, "Broken"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrCreate(ctx, "b", 200, "Fine"); err != nil {
		t.Fatal(err)
	}
	sender.failFor[100] = errors.New("chat blocked the bot")

	if err := svc.Run(ctx, KindMorning); err != nil {
		t.Fatalf("run should not fail on per-user delivery errors: %v", err)
	}

	if len(sender.sent[200]) != 1 {
		t.Errorf("second user did not receive a digest after first user failed")
	}
}

func TestRunEveningUsesEveningToggleAndContent(t *testing.T) {
	ctx := context.Background()
	sender := newRecordingSender()
	svc, s := newService(t, store.NewMemorySnapshot(), sender)

	if _, err := s.GetOrCreate(ctx, "1", 100, "Eve"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mutate(ctx, "1", func(u *domain.User) error {
		u.Locale = domain.LocaleEN
		u.Preferences.MorningDigestEnabled = false
		u.Events = append(u.Events, domain.Event{
			ID:        "e1",
			Title:     "Flight",
			StartTime: time.Date(2025, time.June, 3, 6, 45, 0, 0, time.UTC),
		})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Run(ctx, KindEvening); err != nil {
		t.Fatalf("run: %v", err)
	}

	msgs := sender.sent[100]
	if len(msgs) != 1 {
		t.Fatalf("expected one evening digest despite morning being disabled, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "06:45 - Flight") {
		t.Errorf("evening digest missing tomorrow's event: %q", msgs[0])
	}
}
