package handlers

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"
)

// NewHelpHandler prints the command reference in the user's language.
func NewHelpHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		_, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		lines := []string{
			t.T("help.title"),
			"",
			t.T("help.tasks"),
			t.T("help.events"),
			t.T("help.habits"),
			t.T("help.stats"),
			t.T("help.settings"),
			t.T("help.help"),
		}
		return c.Send(strings.Join(lines, "\n"))
	}
}
