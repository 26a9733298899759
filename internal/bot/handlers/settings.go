package handlers

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/planwise/planner-bot/internal/bot/keyboard"
	"github.com/planwise/planner-bot/internal/domain"
	"github.com/planwise/planner-bot/internal/i18n"
)

// NewSettingsHandler shows the notification toggles with their current state.
func NewSettingsHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		return c.Send(settingsText(t, user.Preferences), settingsMarkup(t))
	}
}

// HandleToggleMorning flips the morning digest preference.
func HandleToggleMorning(deps Deps) CallbackHandler {
	return togglePreference(deps, func(p *domain.Preferences) {
		p.MorningDigestEnabled = !p.MorningDigestEnabled
	})
}

// HandleToggleEvening flips the evening digest preference.
func HandleToggleEvening(deps Deps) CallbackHandler {
	return togglePreference(deps, func(p *domain.Preferences) {
		p.EveningDigestEnabled = !p.EveningDigestEnabled
	})
}

// HandleToggleReminder flips the event reminder preference.
func HandleToggleReminder(deps Deps) CallbackHandler {
	return togglePreference(deps, func(p *domain.Preferences) {
		p.EventRemindersEnabled = !p.EventRemindersEnabled
	})
}

func togglePreference(deps Deps, flip func(p *domain.Preferences)) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		user, t, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		updated, err := deps.Store.Mutate(ctx, user.ID, func(u *domain.User) error {
			flip(&u.Preferences)
			return nil
		})
		if err != nil {
			return err
		}

		// The settings message is rewritten in place so it always shows the
		// stored state.
		if err := c.Edit(settingsText(t, updated.Preferences), settingsMarkup(t)); err != nil {
			deps.logger().Warn("failed to edit settings message", "error", err)
		}
		return respondCallback(c, "")
	}
}

// HandleChangeLanguage swaps the settings keyboard for the language picker.
func HandleChangeLanguage(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		markup := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "🇷🇺 Русский", Unique: CallbackSetLanguage, Data: string(domain.LocaleRU)}).
			AddRow(keyboard.InlineButton{Text: "🇬🇧 English", Unique: CallbackSetLanguage, Data: string(domain.LocaleEN)}).
			AddRow(keyboard.InlineButton{Text: "🇨🇳 中文", Unique: CallbackSetLanguage, Data: string(domain.LocaleZH)}).
			Build()

		if err := c.Edit(markup); err != nil {
			deps.logger().Warn("failed to show language picker", "error", err)
		}
		return respondCallback(c, "")
	}
}

// HandleSetLanguage stores the chosen locale, confirms in the new language, and
// redraws the settings message with translated labels.
func HandleSetLanguage(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		locale := domain.Locale(callbackPayload(c))
		if !domain.KnownLocale(locale) {
			return respondCallback(c, "")
		}

		ctx := context.Background()
		user, _, err := deps.ensureUser(ctx, c)
		if err != nil {
			return err
		}

		updated, err := deps.Store.Mutate(ctx, user.ID, func(u *domain.User) error {
			u.Locale = locale
			return nil
		})
		if err != nil {
			return err
		}

		t := deps.I18n.Translator(locale)
		if err := c.Send(t.T("language.changed")); err != nil {
			return err
		}

		if err := c.Edit(settingsText(t, updated.Preferences), settingsMarkup(t)); err != nil {
			deps.logger().Warn("failed to redraw settings message", "error", err)
		}
		return respondCallback(c, "")
	}
}

func settingsText(t i18n.Translator, prefs domain.Preferences) string {
	var b strings.Builder
	b.WriteString(t.T("settings.title") + "\n\n")
	b.WriteString(toggleLine(t, prefs.MorningDigestEnabled, "settings.morning_on", "settings.morning_off") + "\n")
	b.WriteString(toggleLine(t, prefs.EveningDigestEnabled, "settings.evening_on", "settings.evening_off") + "\n")
	b.WriteString(toggleLine(t, prefs.EventRemindersEnabled, "settings.reminders_on", "settings.reminders_off"))
	return b.String()
}

func settingsMarkup(t i18n.Translator) *telebot.ReplyMarkup {
	return keyboard.NewInlineKeyboard().
		AddRow(keyboard.InlineButton{Text: t.T("settings.toggle_morning"), Unique: CallbackToggleMorning}).
		AddRow(keyboard.InlineButton{Text: t.T("settings.toggle_evening"), Unique: CallbackToggleEvening}).
		AddRow(keyboard.InlineButton{Text: t.T("settings.toggle_reminders"), Unique: CallbackToggleReminder}).
		AddRow(keyboard.InlineButton{Text: t.T("language.button"), Unique: CallbackChangeLanguage}).
		Build()
}

func toggleLine(t i18n.Translator, enabled bool, onKey, offKey string) string {
	if enabled {
		return t.T(onKey)
	}
	return t.T(offKey)
}
