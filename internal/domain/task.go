package domain

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusPostponed is declared in the data model for the mini-app but no
	// transition produces it server-side.
	TaskStatusPostponed TaskStatus = "postponed"
)

// TaskPriority enumerates task priorities as sent by the mini-app.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task is a single to-do item owned by a user.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SetStatus applies a status change and stamps the update time.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	t.Status = status
	t.UpdatedAt = now
}
