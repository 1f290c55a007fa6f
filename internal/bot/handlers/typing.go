package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// typingInterval keeps the indicator alive; Telegram clears it after about 5s.
const typingInterval = 4 * time.Second

// keepTyping shows the typing indicator in chatID until stop is called.
func keepTyping(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
			if err != nil && ctx.Err() == nil {
				log.DebugContext(ctx, "Failed to send typing action", "error", err, "chat_id", chatID)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
