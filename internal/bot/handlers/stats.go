package handlers

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"
)

// NewStatsHandler reports task completion rate, the longest habit streak, and
// the event count.
func NewStatsHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		completed := user.CompletedTaskCount()
		total := len(user.Tasks)
		rate := 0
		if total > 0 {
			rate = int(float64(completed)/float64(total)*100 + 0.5)
		}

		var b strings.Builder
		b.WriteString(t.T("stats.title") + "\n\n")
		b.WriteString(t.Tf("stats.tasks_completed", completed, total, rate) + "\n")
		b.WriteString(t.Tf("stats.longest_streak", user.LongestStreak()) + "\n")
		b.WriteString(t.Tf("stats.event_count", len(user.Events)) + "\n")
		return c.Send(b.String())
	}
}
