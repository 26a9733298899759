package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"
)

// NewHabitsHandler lists tracked habits with today's check-off state and the
// current streak.
func NewHabitsHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		if len(user.Habits) == 0 {
			return c.Send(t.T("habits.none"))
		}

		today := time.Now().UTC()
		var b strings.Builder
		b.WriteString(t.Tf("habits.summary", len(user.Habits)) + "\n\n")
		for i, habit := range user.Habits {
			status := "⬜️"
			if habit.CompletedOn(today) {
				status = "✅"
			}
			fmt.Fprintf(&b, "%d. %s %s (%d %s)\n", i+1, status, habit.Name, habit.Streak, t.T("habits.completed"))
		}
		return c.Send(b.String())
	}
}
