package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/handlers"
	"github.com/planwise/planner-bot/internal/bot/keyboard"
	"github.com/planwise/planner-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		command := extractCommandName(c)
		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(command, status, time.Since(start))

		return err
	}
}

// extractCommandName returns a low-cardinality action label: the command word
// or the callback action without its payload.
func extractCommandName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		action, _, err := keyboard.DecodeCallback(cb.Data)
		if err != nil {
			return "unknown"
		}
		return action
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		if idx := strings.IndexByte(text, ' '); idx > 0 {
			return text[:idx]
		}
		return text
	}

	return "unknown"
}
