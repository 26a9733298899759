package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/keyboard"
)

// NewStartHandler greets the user and offers the mini-app button. First contact
// creates the user record with default preferences.
func NewStartHandler(deps Deps, miniAppURL string) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(user.DisplayName)
		if name == "" {
			name = t.T("greeting_fallback_name")
		}
		if err := c.Send(t.Tf("greeting", name)); err != nil {
			return err
		}

		if miniAppURL == "" {
			deps.logger().Warn("mini-app url not configured, skipping open button",
				slog.String("user_id", user.ID))
			return nil
		}

		markup := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "📱 App / Приложение", WebApp: miniAppURL}).
			Build()
		return c.Send(t.T("open_app"), markup)
	}
}
