package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/planwise/planner-bot/internal/idempotency"
)

func newDedupedHandler(t *testing.T) (http.Handler, *fixture) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t)
	manager := idempotency.NewManager(idempotency.NewRedisStore(client, nil), nil)
	return WithDeduplication(f.handler, manager, nil), f
}

func postRaw(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDuplicatePayloadAppliesOnce(t *testing.T) {
	h, f := newDedupedHandler(t)

	body := `{"userId":"100","type":"task","data":{"id":"t1","title":"Buy milk","status":"pending"}}`
	first := postRaw(t, h, body)
	second := postRaw(t, h, body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed response differs: %q vs %q", first.Body.String(), second.Body.String())
	}

	u, err := f.store.Get(context.Background(), "100")
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Tasks) != 1 {
		t.Errorf("duplicate payload applied %d times", len(u.Tasks))
	}
	if len(f.sender.sent[100]) != 1 {
		t.Errorf("acknowledgement sent %d times, want 1", len(f.sender.sent[100]))
	}
}

func TestDistinctPayloadsBothApply(t *testing.T) {
	h, f := newDedupedHandler(t)

	postRaw(t, h, `{"userId":"100","type":"task","data":{"id":"t1","title":"Buy milk","status":"pending"}}`)
	postRaw(t, h, `{"userId":"100","type":"task","data":{"id":"t2","title":"Call mom","status":"pending"}}`)

	u, err := f.store.Get(context.Background(), "100")
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Tasks) != 2 {
		t.Errorf("expected both tasks, got %d", len(u.Tasks))
	}
}

func TestRejectedPayloadReplaysRejection(t *testing.T) {
	h, f := newDedupedHandler(t)

	body := `{"userId":"100","type":"telemetry","data":{"x":1}}`
	first := postRaw(t, h, body)
	second := postRaw(t, h, body)

	if first.Code != http.StatusBadRequest || second.Code != http.StatusBadRequest {
		t.Fatalf("statuses = %d, %d, want 400 both", first.Code, second.Code)
	}
	if f.store.Len() != 0 {
		t.Error("rejected payload created state")
	}
}
