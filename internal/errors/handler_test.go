package errors

import (
	"context"
	"errors"
	"testing"
)

func TestHandleReturnsTaxonomyUserMessage(t *testing.T) {
	h := NewHandler(nil, false)

	msg, retryable := h.Handle(context.Background(), NewStorageError(errors.New("disk full")))
	if msg != "Temporary problem, please try again later" {
		t.Errorf("user message = %q", msg)
	}
	if !retryable {
		t.Error("storage errors are retryable")
	}
}

func TestHandleNormalizesPlainErrors(t *testing.T) {
	h := NewHandler(nil, false)

	msg, retryable := h.Handle(context.Background(), errors.New("boom"))
	if msg != fallbackUserMessage {
		t.Errorf("plain error user message = %q", msg)
	}
	if retryable {
		t.Error("plain errors must not be retryable")
	}
}

func TestHandleFillsEmptyUserMessage(t *testing.T) {
	h := NewHandler(nil, false)

	// Lookup misses carry no user message of their own.
	msg, _ := h.Handle(context.Background(), NewLookupError("no such task"))
	if msg != fallbackUserMessage {
		t.Errorf("empty user message not replaced: %q", msg)
	}
}

func TestHandleNilError(t *testing.T) {
	h := NewHandler(nil, false)

	msg, retryable := h.Handle(context.Background(), nil)
	if msg != "" || retryable {
		t.Errorf("nil error produced (%q, %v)", msg, retryable)
	}
}
