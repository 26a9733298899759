package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/domain"
)

const eventTimeLayout = "15:04"

// NewEventsHandler lists today's events with their times and locations.
func NewEventsHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		from, to := domain.DayRange(time.Now())
		events := user.EventsBetween(from, to)
		if len(events) == 0 {
			return c.Send(t.T("events.none_today"))
		}

		var b strings.Builder
		b.WriteString(t.Tf("events.today_summary", len(events)) + "\n\n")
		for i, event := range events {
			fmt.Fprintf(&b, "%d. %s - %s", i+1, event.StartTime.Format(eventTimeLayout), event.Title)
			if event.Location != "" {
				fmt.Fprintf(&b, " (%s)", event.Location)
			}
			b.WriteString("\n")
		}
		return c.Send(b.String())
	}
}
