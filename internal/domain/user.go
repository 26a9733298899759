package domain

import "time"

// Locale identifies a supported interface language.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

// DefaultLocale is assigned to users on first contact.
const DefaultLocale = LocaleRU

// KnownLocale reports whether l is one of the supported locales.
func KnownLocale(l Locale) bool {
	switch l {
	case LocaleRU, LocaleEN, LocaleZH:
		return true
	}
	return false
}

// Preferences holds the per-channel notification toggles.
type Preferences struct {
	MorningDigestEnabled  bool `json:"morningDigestEnabled"`
	EveningDigestEnabled  bool `json:"eveningDigestEnabled"`
	EventRemindersEnabled bool `json:"eventRemindersEnabled"`
}

// DefaultPreferences returns the first-contact defaults: everything enabled.
func DefaultPreferences() Preferences {
	return Preferences{
		MorningDigestEnabled:  true,
		EveningDigestEnabled:  true,
		EventRemindersEnabled: true,
	}
}

// User is the single per-user record: identity, collections, and preferences.
type User struct {
	ID          string      `json:"id"`
	ChatID      int64       `json:"chatId"`
	DisplayName string      `json:"displayName,omitempty"`
	Tasks       []Task      `json:"tasks"`
	Events      []Event     `json:"events"`
	Habits      []Habit     `json:"habits"`
	Preferences Preferences `json:"preferences"`
	Locale      Locale      `json:"locale"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewUser builds a user record with first-contact defaults.
func NewUser(id string, chatID int64, displayName string, now time.Time) *User {
	return &User{
		ID:          id,
		ChatID:      chatID,
		DisplayName: displayName,
		Tasks:       []Task{},
		Events:      []Event{},
		Habits:      []Habit{},
		Preferences: DefaultPreferences(),
		Locale:      DefaultLocale,
		CreatedAt:   now,
	}
}

// EffectiveLocale returns the user's locale, falling back to the default for
// records written before the locale field existed.
func (u *User) EffectiveLocale() Locale {
	if KnownLocale(u.Locale) {
		return u.Locale
	}
	return DefaultLocale
}

// PendingTasks returns tasks with status pending, in stored order.
func (u *User) PendingTasks() []Task {
	var pending []Task
	for _, t := range u.Tasks {
		if t.Status == TaskStatusPending {
			pending = append(pending, t)
		}
	}
	return pending
}

// CompletedTaskCount returns how many tasks are completed.
func (u *User) CompletedTaskCount() int {
	n := 0
	for _, t := range u.Tasks {
		if t.Status == TaskStatusCompleted {
			n++
		}
	}
	return n
}

// TaskByID returns a pointer into the user's task slice, or nil.
func (u *User) TaskByID(id string) *Task {
	for i := range u.Tasks {
		if u.Tasks[i].ID == id {
			return &u.Tasks[i]
		}
	}
	return nil
}

// HabitByID returns a pointer into the user's habit slice, or nil.
func (u *User) HabitByID(id string) *Habit {
	for i := range u.Habits {
		if u.Habits[i].ID == id {
			return &u.Habits[i]
		}
	}
	return nil
}

// EventsBetween returns events whose start time falls in [from, to).
func (u *User) EventsBetween(from, to time.Time) []Event {
	var out []Event
	for _, e := range u.Events {
		if !e.StartTime.Before(from) && e.StartTime.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

// LongestStreak returns the maximum streak across all habits.
func (u *User) LongestStreak() int {
	longest := 0
	for _, h := range u.Habits {
		if h.Streak > longest {
			longest = h.Streak
		}
	}
	return longest
}

// Clone returns a deep copy of the record, so callers can read it without
// holding the store lock.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cp := *u
	cp.Tasks = append([]Task(nil), u.Tasks...)
	cp.Events = append([]Event(nil), u.Events...)
	cp.Habits = make([]Habit, len(u.Habits))
	for i, h := range u.Habits {
		cp.Habits[i] = h
		cp.Habits[i].Completions = append([]HabitCompletion(nil), h.Completions...)
	}
	return &cp
}
