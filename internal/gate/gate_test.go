package gate

import (
	"testing"

	"github.com/planwise/planner-bot/internal/domain"
)

func TestAllows(t *testing.T) {
	user := &domain.User{Preferences: domain.Preferences{
		MorningDigestEnabled:  true,
		EveningDigestEnabled:  false,
		EventRemindersEnabled: true,
	}}

	g := New(nil, false)

	testCases := []struct {
		name     string
		channel  Channel
		expected bool
	}{
		{name: "morning enabled", channel: ChannelMorningDigest, expected: true},
		{name: "evening disabled", channel: ChannelEveningDigest, expected: false},
		{name: "reminders enabled", channel: ChannelEventReminder, expected: true},
		{name: "unknown channel denied", channel: Channel("push"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Allows(user, tc.channel); got != tc.expected {
				t.Errorf("Allows(%q) = %t, expected %t", tc.channel, got, tc.expected)
			}
		})
	}
}

func TestAllowsNilUser(t *testing.T) {
	if New(nil, false).Allows(nil, ChannelMorningDigest) {
		t.Error("nil user must never be allowed")
	}
}

func TestStrictModePanicsOnUnknownChannel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown channel in strict mode")
		}
	}()

	New(nil, true).Allows(&domain.User{}, Channel("push"))
}
