// Package notify abstracts the outbound message primitive so schedulers and
// handlers do not depend on the Telegram transport directly.
package notify

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/planwise/planner-bot/internal/errors"
)

// Sender delivers messages to a chat. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, opts ...any) error
}

// TelebotSender sends through a live telebot instance, retrying transient
// failures with backoff.
type TelebotSender struct {
	bot *telebot.Bot
	log *slog.Logger
}

var _ Sender = (*TelebotSender)(nil)

// NewTelebotSender wraps the bot with the Sender interface.
func NewTelebotSender(bot *telebot.Bot, log *slog.Logger) *TelebotSender {
	if log == nil {
		log = slog.Default()
	}
	return &TelebotSender{bot: bot, log: log}
}

// Send delivers text to chatID. opts are passed through to telebot (reply
// markup, parse mode).
func (s *TelebotSender) Send(ctx context.Context, chatID int64, text string, opts ...any) error {
	recipient := &telebot.Chat{ID: chatID}

	err := apperrors.WithRetry(ctx, func() error {
		if _, sendErr := s.bot.Send(recipient, text, opts...); sendErr != nil {
			return apperrors.NewDeliveryError(sendErr)
		}
		return nil
	})
	if err != nil {
		s.log.Error("outbound send failed",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
