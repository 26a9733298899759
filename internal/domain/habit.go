package domain

import "time"

// CompletionDateLayout is the calendar-day key format for habit completions.
const CompletionDateLayout = "2006-01-02"

// HabitCompletion marks whether a habit was completed on a calendar day.
type HabitCompletion struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Habit is a recurring behavior the user tracks daily.
type Habit struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Streak      int               `json:"streak"`
	Completions []HabitCompletion `json:"completions"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// MarkCompletion records a completion for the given day. A second write for the
// same day overwrites the stored value instead of appending. The streak counter
// increments on any completed=true write and resets to zero on completed=false;
// it does not inspect gaps between calendar days.
func (h *Habit) MarkCompletion(day time.Time, completed bool, now time.Time) {
	date := day.Format(CompletionDateLayout)

	found := false
	for i := range h.Completions {
		if h.Completions[i].Date == date {
			h.Completions[i].Completed = completed
			found = true
			break
		}
	}
	if !found {
		h.Completions = append(h.Completions, HabitCompletion{Date: date, Completed: completed})
	}

	if completed {
		h.Streak++
	} else {
		h.Streak = 0
	}
	h.UpdatedAt = now
}

// CompletedOn reports whether the habit has a completed entry for the given day.
func (h *Habit) CompletedOn(day time.Time) bool {
	date := day.Format(CompletionDateLayout)
	for _, c := range h.Completions {
		if c.Date == date && c.Completed {
			return true
		}
	}
	return false
}
