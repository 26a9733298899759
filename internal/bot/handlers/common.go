// Package handlers implements the bot's commands and inline callbacks.
package handlers

import (
	"context"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/keyboard"
	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/i18n"
	"github.com/planwise/planner-bot/internal/store"
)

// Callback action identifiers carried in inline button data.
const (
	CallbackCompleteTask   = "complete_task"
	CallbackIncompleteTask = "incomplete_task"
	CallbackToggleMorning  = "toggle_morning"
	CallbackToggleEvening  = "toggle_evening"
	CallbackToggleReminder = "toggle_reminders"
	CallbackChangeLanguage = "change_language"
	CallbackSetLanguage    = "set_language"
)

// Deps bundles what every handler needs: the user store and translations.
type Deps struct {
	Store store.UserStore
	I18n  *i18n.Manager
	Log   *slog.Logger
}

// ensureUser resolves the sender to a stored record, creating it with defaults
// on first contact, and returns the record's translator.
func (d Deps) ensureUser(ctx context.Context, c telebot.Context) (*domain.User, i18n.Translator, error) {
	sender := c.Sender()

	chatID := sender.ID
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}

	user, err := d.Store.GetOrCreate(ctx, strconv.FormatInt(sender.ID, 10), chatID, sender.FirstName)
	if err != nil {
		return nil, d.I18n.Translator(domain.DefaultLocale), err
	}

	return user, d.I18n.Translator(user.EffectiveLocale()), nil
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// truncate shortens s to at most n runes for callback response toasts.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func respondCallback(c telebot.Context, text string) error {
	return c.Respond(&telebot.CallbackResponse{Text: text})
}

// callbackPayload extracts the data part after the action identifier.
func callbackPayload(c telebot.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, data, err := keyboard.DecodeCallback(cb.Data)
	if err != nil {
		return ""
	}
	return data
}
