// Package notify delivers admin notifications for new submissions, content
// ideas and tweet feedback. Messages are rendered here and sent through a
// Notifier; delivery runs on the background job queue so request handling
// never waits on Telegram.
package notify

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends one rendered message to the admin channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifier delivers messages to a fixed admin chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	_, err := n.bot.Send(msg)
	return err
}

// NoopNotifier is used when Telegram is not configured; sends are skipped.
type NoopNotifier struct {
	Logger *slog.Logger
}

func (n *NoopNotifier) Send(ctx context.Context, text string) error {
	if n.Logger != nil {
		n.Logger.Debug("telegram not configured, skipping notification")
	}
	return nil
}
