package domain

import "time"

// ReminderLead is the offset before an event's start at which its reminder fires.
type ReminderLead string

const (
	ReminderNone   ReminderLead = "none"
	Reminder15Min  ReminderLead = "15min"
	Reminder1Hour  ReminderLead = "1hour"
	Reminder1Day   ReminderLead = "1day"
)

// Offset returns the lead time as a duration. Unknown values behave as none.
func (r ReminderLead) Offset() (time.Duration, bool) {
	switch r {
	case Reminder15Min:
		return 15 * time.Minute, true
	case Reminder1Hour:
		return time.Hour, true
	case Reminder1Day:
		return 24 * time.Hour, true
	}
	return 0, false
}

// Recurrence enumerates event repetition modes declared by the mini-app.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Event is a calendar entry owned by a user.
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     time.Time    `json:"endTime"`
	Location    string       `json:"location,omitempty"`
	Recurrence  Recurrence   `json:"recurrence,omitempty"`
	Reminder    ReminderLead `json:"reminder"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// DayRange returns the local midnight-to-midnight window containing day.
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
