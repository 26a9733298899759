// Package gate decides whether a user currently wants a notification channel.
// It is consulted both when a notification is scheduled and again when it
// fires, so a toggle flipped in between still suppresses delivery.
package gate

import (
	"fmt"
	"log/slog"

	"github.com/planwise/planner-bot/internal/domain"
)

// Channel names one of the notification categories.
type Channel string

const (
	ChannelMorningDigest Channel = "morning_digest"
	ChannelEveningDigest Channel = "evening_digest"
	ChannelEventReminder Channel = "event_reminder"
)

// Gate is a pure predicate over the user's stored preferences.
type Gate struct {
	log *slog.Logger
	// strict makes unknown channels panic instead of denying. Enabled in
	// development so a miswired channel fails loudly instead of silently
	// dropping notifications.
	strict bool
}

// New builds a Gate. strict should be true outside production.
func New(log *slog.Logger, strict bool) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{log: log, strict: strict}
}

// Allows reports whether the user currently accepts notifications on channel.
// An unknown channel is a programming error: it panics in strict mode and
// denies (with an error log) otherwise.
func (g *Gate) Allows(user *domain.User, channel Channel) bool {
	if user == nil {
		return false
	}

	switch channel {
	case ChannelMorningDigest:
		return user.Preferences.MorningDigestEnabled
	case ChannelEveningDigest:
		return user.Preferences.EveningDigestEnabled
	case ChannelEventReminder:
		return user.Preferences.EventRemindersEnabled
	}

	if g.strict {
		panic(fmt.Sprintf("gate: unknown notification channel %q", channel))
	}
	g.log.Error("unknown notification channel, denying delivery", slog.String("channel", string(channel)))
	return false
}
