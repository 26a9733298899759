package reminder

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/store"
)

type captureSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (c *captureSender) Send(_ context.Context, chatID int64, text string, _ ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent == nil {
		c.sent = make(map[int64][]string)
	}
	c.sent[chatID] = append(c.sent[chatID], text)
	return nil
}

func newFirer(t *testing.T) (*Firer, *store.Store, *captureSender) {
	t.Helper()

	manager, err := i18n.LoadFromDir("../i18n/locales", domain.LocaleRU)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	s := store.New(context.Background(), store.NewMemorySnapshot(), nil)
	sender := &captureSender{}
	return NewFirer(s, gate.New(nil, true), manager, sender, nil), s, sender
}

func TestFireDeliversLocalizedReminder(t *testing.T) {
	ctx := context.Background()
	f, s, sender := newFirer(t)

	if _, err := s.GetOrCreate(ctx, "1", 100, "Alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mutate(ctx, "1", func(u *domain.User) error {
		u.Locale = domain.LocaleEN
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	payload := Payload{
		UserID:     "1",
		ChatID:     100,
		EventID:    "e1",
		EventTitle: "Dentist",
		StartTime:  time.Date(2025, time.June, 2, 11, 30, 0, 0, time.UTC),
	}
	if err := f.Fire(ctx, payload); err != nil {
		t.Fatalf("fire: %v", err)
	}

	msgs := sender.sent[100]
	if len(msgs) != 1 {
		t.Fatalf("expected one delivery, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "🔔") || !strings.Contains(msgs[0], "\"Dentist\"") {
		t.Errorf("reminder body malformed: %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "11:30") {
		t.Errorf("event time missing: %q", msgs[0])
	}
	if !strings.Contains(msgs[0], "Event reminder:") {
		t.Errorf("header not localized to the user's current locale: %q", msgs[0])
	}
}

func TestFireHonorsPreferenceFlippedAfterScheduling(t *testing.T) {
	ctx := context.Background()
	f, s, sender := newFirer(t)

	if _, err := s.GetOrCreate(ctx, "1", 100, "Alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mutate(ctx, "1", func(u *domain.User) error {
		u.Preferences.EventRemindersEnabled = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	err := f.Fire(ctx, Payload{UserID: "1", ChatID: 100, EventID: "e1", EventTitle: "Dentist"})
	if err != nil {
		t.Fatalf("suppressed reminder must not error: %v", err)
	}
	if len(sender.sent[100]) != 0 {
		t.Errorf("reminder delivered despite disabled preference")
	}
}

func TestFireSuppressesForDeletedUser(t *testing.T) {
	ctx := context.Background()
	f, _, sender := newFirer(t)

	err := f.Fire(ctx, Payload{UserID: "ghost", ChatID: 100, EventID: "e1"})
	if err != nil {
		t.Fatalf("missing user must not error: %v", err)
	}
	if len(sender.sent[100]) != 0 {
		t.Errorf("reminder delivered for an unknown user")
	}
}
