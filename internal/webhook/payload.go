package webhook

import (
	"encoding/json"

	"github.com/planwise/planner-bot/internal/domain"
)

// Type enumerates the payload kinds the mini-app posts.
type Type string

const (
	TypeTask                 Type = "task"
	TypeTaskStatusChange     Type = "task_status_change"
	TypeEvent                Type = "event"
	TypeHabit                Type = "habit"
	TypeHabitCompletion      Type = "habit_completion"
	TypeNotificationSettings Type = "notification_settings"
	TypeLanguageChange       Type = "language_change"
)

// Silent reports whether the payload type skips the acknowledgement message.
// Status flips and habit check-offs happen many times a day and would be noise.
func (t Type) Silent() bool {
	return t == TypeTaskStatusChange || t == TypeHabitCompletion
}

// Envelope is the common request shape: who, what kind, and the kind-specific
// body left raw until the type is known.
type Envelope struct {
	UserID string          `json:"userId" validate:"required"`
	Type   Type            `json:"type" validate:"required"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

// TaskStatusChangeData flips one task's status.
type TaskStatusChangeData struct {
	Task struct {
		ID     string            `json:"id" validate:"required"`
		Status domain.TaskStatus `json:"status" validate:"required,oneof=pending completed postponed"`
	} `json:"task"`
}

// HabitCompletionData records today's check-off for one habit.
type HabitCompletionData struct {
	Habit struct {
		ID string `json:"id" validate:"required"`
	} `json:"habit"`
	Completed bool `json:"completed"`
}

// NotificationSettingsData replaces the user's notification toggles wholesale.
type NotificationSettingsData struct {
	Settings domain.Preferences `json:"settings"`
}

// LanguageChangeData switches the user's interface language.
type LanguageChangeData struct {
	Language domain.Locale `json:"language" validate:"required,oneof=ru en zh"`
}
