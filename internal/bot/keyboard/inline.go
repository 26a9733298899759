package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// InlineButton represents a lightweight inline keyboard button definition used by the builder.
type InlineButton struct {
	Text   string
	Unique string // Identifier that differentiates callback handlers.
	Data   string // Payload that will be encoded into callback data.
	WebApp string // Mini-app URL; mutually exclusive with callback data.
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions before rendering telebot markup.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

// NewInlineKeyboard creates a builder instance backed by inline reply markup.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{
		rows: make([][]InlineButton, 0),
	}
}

// AddRow appends a new row made of custom InlineButton definitions.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build finalizes inline markup. Callback data is produced with EncodeCallback;
// buttons whose payload exceeds the Telegram limit fall back to the bare action.
func (b *InlineKeyboardBuilder) Build() *telebot.ReplyMarkup {
	inlineKeyboard := make([][]telebot.InlineButton, len(b.rows))
	for i, row := range b.rows {
		inlineKeyboard[i] = make([]telebot.InlineButton, len(row))
		for j, btn := range row {
			out := telebot.InlineButton{Text: btn.Text}
			if btn.WebApp != "" {
				out.WebApp = &telebot.WebApp{URL: btn.WebApp}
			} else {
				data, err := EncodeCallback(btn.Unique, btn.Data)
				if err != nil {
					data = btn.Unique
				}
				out.Data = data
			}
			inlineKeyboard[i][j] = out
		}
	}

	return &telebot.ReplyMarkup{InlineKeyboard: inlineKeyboard}
}
