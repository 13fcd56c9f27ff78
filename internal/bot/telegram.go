package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
}

func NewTelegramBot(token string, dir view.Directory) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramBot{
		bot:     bot,
		handler: NewHandler(dir),
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			msg, ok := t.handler.Reply(ctx, update)
			if !ok {
				continue
			}
			if _, err := t.bot.Send(msg); err != nil {
				slog.Error("Error sending reply", "command", update.Message.Command(), "chat_id", msg.ChatID, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
