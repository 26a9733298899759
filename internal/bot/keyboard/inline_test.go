package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/planner-bot/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("rows and callback data", func(t *testing.T) {
		markup := keyboard.NewInlineKeyboard().
			AddRow(
				keyboard.InlineButton{Text: "Done", Unique: "complete_task", Data: "task-1"},
				keyboard.InlineButton{Text: "Undo", Unique: "incomplete_task", Data: "task-1"},
			).
			AddRow(keyboard.InlineButton{Text: "Language", Unique: "change_language"}).
			Build()

		require.NotNil(t, markup)
		require.Len(t, markup.InlineKeyboard, 2)
		require.Len(t, markup.InlineKeyboard[0], 2)
		require.Len(t, markup.InlineKeyboard[1], 1)

		assert.Equal(t, "complete_task:task-1", markup.InlineKeyboard[0][0].Data)
		assert.Equal(t, "incomplete_task:task-1", markup.InlineKeyboard[0][1].Data)
		assert.Equal(t, "change_language", markup.InlineKeyboard[1][0].Data)
	})

	t.Run("web app button carries url instead of data", func(t *testing.T) {
		markup := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "App", WebApp: "https://t.me/planwise_bot/app"}).
			Build()

		require.Len(t, markup.InlineKeyboard, 1)
		btn := markup.InlineKeyboard[0][0]
		require.NotNil(t, btn.WebApp)
		assert.Equal(t, "https://t.me/planwise_bot/app", btn.WebApp.URL)
		assert.Empty(t, btn.Data)
	})

	t.Run("oversized payload falls back to bare action", func(t *testing.T) {
		markup := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{
				Text:   "Too big",
				Unique: "complete_task",
				Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
			}).
			Build()

		require.Len(t, markup.InlineKeyboard, 1)
		assert.Equal(t, "complete_task", markup.InlineKeyboard[0][0].Data)
	})

	t.Run("empty row is skipped", func(t *testing.T) {
		markup := keyboard.NewInlineKeyboard().
			AddRow().
			AddRow(keyboard.InlineButton{Text: "Only", Unique: "toggle_morning"}).
			Build()

		require.Len(t, markup.InlineKeyboard, 1)
	})
}
