package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/keyboard"
	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/i18n"
)

const callbackTitleLimit = 20

// NewTasksHandler lists pending tasks: one summary message, then one message
// per task with its completion button, matching the mini-app's flow.
func NewTasksHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		pending := user.PendingTasks()
		if len(pending) == 0 {
			return c.Send(t.T("tasks.none"))
		}

		var b strings.Builder
		b.WriteString(t.Tf("tasks.summary", len(pending)) + "\n\n")
		for i, task := range pending {
			fmt.Fprintf(&b, "%d. %s\n", i+1, task.Title)
		}
		if err := c.Send(b.String()); err != nil {
			return err
		}

		for _, task := range pending {
			text := task.Title
			if task.Description != "" {
				text += "\n" + task.Description
			}
			if err := c.Send(text, taskActionMarkup(t, task.ID, false)); err != nil {
				return err
			}
		}
		return nil
	}
}

// HandleCompleteTask flips a task to completed and rewrites the task message so
// the button inverts. Unknown task ids are acknowledged silently.
func HandleCompleteTask(deps Deps) CallbackHandler {
	return setTaskStatus(deps, domain.TaskStatusCompleted)
}

// HandleIncompleteTask flips a completed task back to pending.
func HandleIncompleteTask(deps Deps) CallbackHandler {
	return setTaskStatus(deps, domain.TaskStatusPending)
}

func setTaskStatus(deps Deps, status domain.TaskStatus) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		taskID := callbackPayload(c)
		if taskID == "" {
			return respondCallback(c, "")
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		var title string
		_, err = deps.Store.Mutate(ctx, user.ID, func(u *domain.User) error {
			task := u.TaskByID(taskID)
			if task == nil {
				return nil
			}
			task.SetStatus(status, time.Now().UTC())
			title = task.Title
			return nil
		})
		if err != nil {
			return err
		}

		if title == "" {
			deps.logger().Warn("callback for unknown task",
				slog.String("user_id", user.ID),
				slog.String("task_id", taskID),
			)
			return respondCallback(c, "")
		}

		if status == domain.TaskStatusCompleted {
			if err := c.Edit("✅ "+title, taskActionMarkup(t, taskID, true)); err != nil {
				deps.logger().Warn("failed to edit task message", slog.Any("error", err))
			}
			return respondCallback(c, t.Tf("tasks.marked_complete", truncate(title, callbackTitleLimit)))
		}

		if err := c.Edit(title, taskActionMarkup(t, taskID, false)); err != nil {
			deps.logger().Warn("failed to edit task message", slog.Any("error", err))
		}
		return respondCallback(c, t.Tf("tasks.marked_incomplete", truncate(title, callbackTitleLimit)))
	}
}

func taskActionMarkup(t i18n.Translator, taskID string, completed bool) *telebot.ReplyMarkup {
	if completed {
		return keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: t.T("tasks.mark_incomplete"), Unique: CallbackIncompleteTask, Data: taskID}).
			Build()
	}
	return keyboard.NewInlineKeyboard().
		AddRow(keyboard.InlineButton{Text: t.T("tasks.mark_complete"), Unique: CallbackCompleteTask, Data: taskID}).
		Build()
}
