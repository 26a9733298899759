// Package digest builds and delivers the morning and evening summary messages.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/i18n"
)

const (
	// maxMorningTasks caps the task list in the morning digest; the rest is
	// folded into an overflow line.
	maxMorningTasks = 5

	eventTimeLayout = "15:04"
)

// Composer renders digest texts for a user's current state. All methods are
// pure: they read the record and the clock value they are given.
type Composer struct {
	i18n *i18n.Manager
}

// NewComposer builds a Composer over the loaded translation catalogs.
func NewComposer(manager *i18n.Manager) *Composer {
	return &Composer{i18n: manager}
}

// Morning renders the morning digest: greeting, today's events, up to five
// pending tasks. now anchors the "today" window in its own location.
func (c *Composer) Morning(user *domain.User, now time.Time) string {
	t := c.i18n.Translator(user.EffectiveLocale())

	var b strings.Builder
	fmt.Fprintf(&b, "🌞 %s\n\n", t.Tf("greeting", displayName(user, t)))

	from, to := domain.DayRange(now)
	todayEvents := user.EventsBetween(from, to)
	if len(todayEvents) > 0 {
		b.WriteString(t.Tf("events.today_summary", len(todayEvents)) + "\n")
		writeEventLines(&b, todayEvents)
		b.WriteString("\n")
	} else {
		b.WriteString(t.T("events.none_today") + "\n\n")
	}

	pending := user.PendingTasks()
	if len(pending) > 0 {
		b.WriteString(t.Tf("tasks.summary", len(pending)) + "\n")
		shown := pending
		if len(shown) > maxMorningTasks {
			shown = shown[:maxMorningTasks]
		}
		for i, task := range shown {
			fmt.Fprintf(&b, "%d. %s\n", i+1, task.Title)
		}
		if len(pending) > maxMorningTasks {
			b.WriteString(t.Tf("tasks.more", len(pending)-maxMorningTasks) + "\n")
		}
	} else {
		b.WriteString(t.T("tasks.none") + "\n")
	}

	return b.String()
}

// Evening renders the evening digest: greeting, tomorrow's events, and the
// plan-tomorrow reminder line.
func (c *Composer) Evening(user *domain.User, now time.Time) string {
	t := c.i18n.Translator(user.EffectiveLocale())

	var b strings.Builder
	fmt.Fprintf(&b, "🌙 %s\n\n", t.Tf("greeting", displayName(user, t)))

	_, tomorrowStart := domain.DayRange(now)
	_, dayAfter := domain.DayRange(tomorrowStart)
	tomorrowEvents := user.EventsBetween(tomorrowStart, dayAfter)
	if len(tomorrowEvents) > 0 {
		b.WriteString(t.Tf("events.tomorrow_summary", len(tomorrowEvents)) + "\n")
		writeEventLines(&b, tomorrowEvents)
	} else {
		b.WriteString(t.T("events.none_tomorrow") + "\n")
	}

	b.WriteString("\n" + t.T("digest.plan_tomorrow"))

	return b.String()
}

func writeEventLines(b *strings.Builder, events []domain.Event) {
	for i, event := range events {
		fmt.Fprintf(b, "%d. %s - %s\n", i+1, event.StartTime.Format(eventTimeLayout), event.Title)
	}
}

func displayName(user *domain.User, t i18n.Translator) string {
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		return t.T("greeting_fallback_name")
	}
	return name
}
