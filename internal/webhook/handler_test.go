package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
	apperrors "github.com/planwise/planner-bot/internal/errors"
	"github.com/planwise/planner-bot/internal/gate"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/notify"
	"github.com/planwise/planner-bot/internal/reminder"
	"github.com/planwise/planner-bot/internal/store"
)

var handlerNow = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

type stubSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (s *stubSender) Send(_ context.Context, chatID int64, text string, _ ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[int64][]string)
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

type stubExecutor struct {
	mu        sync.Mutex
	scheduled int
}

func (s *stubExecutor) RunAt(context.Context, string, time.Time, reminder.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled++
	return nil
}

func (s *stubExecutor) Cancel(context.Context, string) error { return nil }

type fixture struct {
	handler   *Handler
	store     *store.Store
	sender    *stubSender
	executor  *stubExecutor
	scheduler *reminder.Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	manager, err := i18n.LoadFromDir("../i18n/locales", domain.LocaleRU)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	s := store.New(context.Background(), store.NewMemorySnapshot(), nil)
	s.SetClock(func() time.Time { return handlerNow })

	g := gate.New(nil, true)
	executor := &stubExecutor{}
	scheduler := reminder.NewScheduler(executor, g, nil)
	scheduler.SetClock(func() time.Time { return handlerNow })

	sender := &stubSender{}
	h := NewHandler(s, scheduler, sender, manager, apperrors.NewHandler(nil, false), nil)
	h.SetClock(func() time.Time { return handlerNow })

	return &fixture{handler: h, store: s, sender: sender, executor: executor, scheduler: scheduler}
}

func (f *fixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRejectsMissingFields(t *testing.T) {
	f := newFixture(t)

	for name, body := range map[string]string{
		"no user id": `{"type":"task","data":{"id":"t1"}}`,
		"no type":    `{"userId":"100","data":{"id":"t1"}}`,
		"no data":    `{"userId":"100","type":"task"}`,
		"not json":   `{"userId":`,
	} {
		rec := f.post(t, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
		if resp := decodeResponse(t, rec); resp.Success {
			t.Errorf("%s: success=true on a rejected payload", name)
		}
	}

	if f.store.Len() != 0 {
		t.Errorf("rejected payloads must not create users, store has %d", f.store.Len())
	}
}

func TestRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"userId":"100","type":"telemetry","data":{"x":1}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if f.store.Len() != 0 {
		t.Error("unknown type created a user record")
	}
}

func TestTaskPayloadCreatesUserAndAppends(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"userId":"100","type":"task","data":{"id":"t1","title":"Buy milk","status":"pending"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); !resp.Success {
		t.Fatalf("success=false: %+v", resp)
	}

	u, err := f.store.Get(context.Background(), "100")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if len(u.Tasks) != 1 || u.Tasks[0].Title != "Buy milk" {
		t.Errorf("task not appended: %+v", u.Tasks)
	}
	if len(f.sender.sent[100]) != 1 {
		t.Errorf("expected acknowledgement message, sent=%v", f.sender.sent)
	}
}

func TestTaskStatusChangeIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.post(t, `{"userId":"100","type":"task","data":{"id":"t1","title":"Buy milk","status":"pending"}}`)
	ackCount := len(f.sender.sent[100])

	rec := f.post(t, `{"userId":"100","type":"task_status_change","data":{"task":{"id":"t1","status":"completed"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	u, _ := f.store.Get(ctx, "100")
	if u.Tasks[0].Status != domain.TaskStatusCompleted {
		t.Errorf("status = %s, want completed", u.Tasks[0].Status)
	}
	if len(f.sender.sent[100]) != ackCount {
		t.Error("status change sent an acknowledgement, should be silent")
	}
}

func TestTaskStatusChangeUnknownTaskIsNoOp(t *testing.T) {
	f := newFixture(t)

	f.post(t, `{"userId":"100","type":"task","data":{"id":"t1","title":"Buy milk","status":"pending"}}`)
	rec := f.post(t, `{"userId":"100","type":"task_status_change","data":{"task":{"id":"ghost","status":"completed"}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("unknown task id should be a 200 no-op, got %d", rec.Code)
	}
	u, _ := f.store.Get(context.Background(), "100")
	if u.Tasks[0].Status != domain.TaskStatusPending {
		t.Errorf("unrelated task mutated: %+v", u.Tasks[0])
	}
}

func TestEventPayloadSchedulesReminder(t *testing.T) {
	f := newFixture(t)

	start := handlerNow.Add(3 * time.Hour).Format(time.RFC3339)
	rec := f.post(t, `{"userId":"100","type":"event","data":{"id":"e1","title":"Dentist","startTime":"`+start+`","reminder":"1hour"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if f.executor.scheduled != 1 {
		t.Errorf("reminder not scheduled, executor saw %d registrations", f.executor.scheduled)
	}
	if !f.scheduler.Pending("100", "e1") {
		t.Error("scheduler has no pending handle for the new event")
	}
}

func TestEventWithoutReminderSchedulesNothing(t *testing.T) {
	f := newFixture(t)

	start := handlerNow.Add(3 * time.Hour).Format(time.RFC3339)
	f.post(t, `{"userId":"100","type":"event","data":{"id":"e1","title":"Dentist","startTime":"`+start+`","reminder":"none"}}`)

	if f.executor.scheduled != 0 {
		t.Errorf("reminder scheduled for reminder=none")
	}
}

func TestEventRemindersDisabledSkipsScheduling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.GetOrCreate(ctx, "100", 100, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Mutate(ctx, "100", func(u *domain.User) error {
		u.Preferences.EventRemindersEnabled = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	start := handlerNow.Add(3 * time.Hour).Format(time.RFC3339)
	rec := f.post(t, `{"userId":"100","type":"event","data":{"id":"e1","title":"Dentist","startTime":"`+start+`","reminder":"1hour"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if f.executor.scheduled != 0 {
		t.Error("reminder scheduled despite disabled preference")
	}
}

func TestHabitCompletionUpdatesStreak(t *testing.T) {
	f := newFixture(t)

	f.post(t, `{"userId":"100","type":"habit","data":{"id":"h1","name":"Run","streak":0,"completions":[]}}`)
	rec := f.post(t, `{"userId":"100","type":"habit_completion","data":{"habit":{"id":"h1"},"completed":true}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	u, _ := f.store.Get(context.Background(), "100")
	habit := u.HabitByID("h1")
	if habit == nil {
		t.Fatal("habit missing")
	}
	if habit.Streak != 1 {
		t.Errorf("streak = %d, want 1", habit.Streak)
	}
	if len(habit.Completions) != 1 || !habit.Completions[0].Completed {
		t.Errorf("completion not recorded: %+v", habit.Completions)
	}

	// Same-day rewrite keeps one entry and resets the streak.
	f.post(t, `{"userId":"100","type":"habit_completion","data":{"habit":{"id":"h1"},"completed":false}}`)
	u, _ = f.store.Get(context.Background(), "100")
	habit = u.HabitByID("h1")
	if len(habit.Completions) != 1 {
		t.Errorf("same-day completion appended instead of rewritten: %+v", habit.Completions)
	}
	if habit.Streak != 0 {
		t.Errorf("streak = %d after false completion, want 0", habit.Streak)
	}
}

func TestNotificationSettingsReplaceToggles(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"userId":"100","type":"notification_settings","data":{"settings":{"morningDigestEnabled":false,"eveningDigestEnabled":true,"eventRemindersEnabled":false}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	u, _ := f.store.Get(context.Background(), "100")
	if u.Preferences.MorningDigestEnabled || !u.Preferences.EveningDigestEnabled || u.Preferences.EventRemindersEnabled {
		t.Errorf("preferences not replaced: %+v", u.Preferences)
	}
}

func TestLanguageChangeSwitchesAckLocale(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"userId":"100","type":"language_change","data":{"language":"en"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	u, _ := f.store.Get(context.Background(), "100")
	if u.Locale != domain.LocaleEN {
		t.Errorf("locale = %s, want en", u.Locale)
	}

	// The acknowledgement is already in the new language.
	msgs := f.sender.sent[100]
	if len(msgs) != 1 || !strings.Contains(msgs[0], "mini-app") {
		t.Errorf("acknowledgement not localized: %v", msgs)
	}
}

func TestLanguageChangeRejectsUnknownLocale(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"userId":"100","type":"language_change","data":{"language":"fr"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetIsRejected(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

var _ notify.Sender = (*stubSender)(nil)
