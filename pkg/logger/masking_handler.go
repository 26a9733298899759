package logger

import (
	"context"
	"log/slog"
	"strings"
)

const maskedValue = "***"

// Secret-bearing key fragments. Matched as substrings so "bot_token" and
// "sentry_dsn" are caught, not just the bare names.
var secretKeyFragments = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
	"dsn",
}

// MaskingHandler rewrites secret-bearing attributes before records reach any
// sink (stdout, file, Sentry). The bot token and store DSN must never land in
// a log line, including inside grouped attributes.
type MaskingHandler struct {
	next slog.Handler
}

// NewMaskingHandler wraps next with secret masking.
func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// WithAttrs masks the pre-attached attributes too: a logger built with
// With("token", ...) must not leak through the wrapper.
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &MaskingHandler{next: h.next.WithAttrs(masked)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

// maskAttr replaces secret values and descends into groups.
func maskAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		maskedMembers := make([]slog.Attr, len(members))
		for i, member := range members {
			maskedMembers[i] = maskAttr(member)
		}
		attr.Value = slog.GroupValue(maskedMembers...)
		return attr
	}

	if isSecretKey(attr.Key) {
		attr.Value = slog.StringValue(maskedValue)
	}
	return attr
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, fragment := range secretKeyFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
