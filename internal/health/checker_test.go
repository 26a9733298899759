package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckerReportsPerComponentStatus(t *testing.T) {
	c := NewChecker(testLogger())
	c.AddCheck("snapshot", checkFunc(func(context.Context) error { return nil }))
	c.AddCheck("redis", checkFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))

	results := c.Check(context.Background())

	if results["snapshot"] != "OK" {
		t.Errorf("snapshot status = %q", results["snapshot"])
	}
	if results["redis"] != "connection refused" {
		t.Errorf("redis status = %q", results["redis"])
	}
	if Healthy(results) {
		t.Error("Healthy returned true with a failing component")
	}
}

func TestCheckerAppliesPerCheckTimeout(t *testing.T) {
	c := NewChecker(testLogger())
	c.AddCheck("slow", checkFunc(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			return errors.New("no deadline set")
		}
		_ = deadline
		return nil
	}))

	results := c.Check(context.Background())
	if results["slow"] != "OK" {
		t.Errorf("check did not receive a deadline: %q", results["slow"])
	}
}

func TestCheckerIgnoresEmptyRegistrations(t *testing.T) {
	c := NewChecker(testLogger())
	c.AddCheck("", checkFunc(func(context.Context) error { return nil }))
	c.AddCheck("nil-check", nil)

	if got := len(c.Check(context.Background())); got != 0 {
		t.Errorf("registered %d checks, want 0", got)
	}
}

func TestHealthyOnAllOK(t *testing.T) {
	if !Healthy(map[string]string{"a": "OK", "b": "OK"}) {
		t.Error("Healthy returned false with all components OK")
	}
	if !Healthy(nil) {
		t.Error("Healthy returned false with no components")
	}
}
