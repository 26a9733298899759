package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/planwise/planner-bot/pkg/logger"
)

const fallbackUserMessage = "Something went wrong. Please try again later."

// Handler is the single sink for failures that escape their operation: it
// logs, forwards severe ones to Sentry, and decides what the user sees.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle reports err and returns the user-facing message plus whether the
// operation may be retried. Errors outside the AppError taxonomy are treated
// as high-severity and non-retryable.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	appErr := normalize(err)

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}
	log.LogAttrs(ctx, slog.LevelError, "operation failed", attrs...)

	if h.sentryEnabled && (appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical) {
		reportToSentry(err, appErr)
	}

	userMessage := appErr.UserMessage
	if userMessage == "" {
		userMessage = fallbackUserMessage
	}

	return userMessage, appErr.Retryable
}

// normalize maps arbitrary errors onto the taxonomy so logging, Sentry gating
// and the user message all read from one shape.
func normalize(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}

	return &AppError{
		Code:        "E900",
		Message:     err.Error(),
		UserMessage: fallbackUserMessage,
		Severity:    SeverityHigh,
		Retryable:   false,
	}
}

func reportToSentry(err error, appErr *AppError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		if appErr.Code != "" {
			scope.SetTag("code", appErr.Code)
		}
		if appErr.Severity != "" {
			scope.SetTag("severity", string(appErr.Severity))
		}

		sentry.CaptureException(err)
	})
}
