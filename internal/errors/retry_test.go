package errors

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewValidationError("bad payload")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error was attempted %d times", calls)
	}
}

func TestWithRetryRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewDeliveryError(errors.New("telegram 502"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, expected 3", calls)
	}
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewDeliveryError(errors.New("still down"))
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != DeliveryPolicy.MaxRetries+1 {
		t.Errorf("calls = %d, expected %d", calls, DeliveryPolicy.MaxRetries+1)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors must not be retryable")
	}
	if !IsRetryable(NewStorageError(errors.New("io"))) {
		t.Error("storage errors are retryable")
	}
	if IsRetryable(NewLookupError("missing task")) {
		t.Error("lookup misses are not retryable")
	}
}
