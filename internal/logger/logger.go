// Package logger provides the slog setup and the Telegram update logging
// middleware.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const previewLength = 50

// NewLogger creates a slog Logger on stdout with the given level, as JSON
// when jsonOutput is set and as text otherwise. It also becomes the default logger.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Middleware logs every incoming update and how long it took to handle.
// Message text is only logged as a short preview.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			logEntry := log.With("update_id", update.ID)

			var updateType string
			switch {
			case update.Message != nil:
				msg := update.Message
				updateType = "message"
				logEntry = logEntry.With(
					"message_id", msg.ID,
					"chat_id", msg.Chat.ID,
					"has_photo", len(msg.Photo) > 0,
					"text_preview", Preview(msg.Text, previewLength),
				)
				if msg.From != nil {
					logEntry = logEntry.With("user_id", msg.From.ID)
				}
			case update.CallbackQuery != nil:
				cq := update.CallbackQuery
				updateType = "callback_query"
				logEntry = logEntry.With(
					"callback_query_id", cq.ID,
					"user_id", cq.From.ID,
					"data", cq.Data,
				)
				switch {
				case cq.Message.Message != nil:
					logEntry = logEntry.With("chat_id", cq.Message.Message.Chat.ID, "message_accessible", true)
				case cq.Message.InaccessibleMessage != nil:
					logEntry = logEntry.With("chat_id", cq.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
				}
			default:
				updateType = "other"
			}
			logEntry = logEntry.With("update_type", updateType)

			logEntry.InfoContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// Preview shortens s to at most maxRunes runes, marking the cut with "...".
func Preview(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return "..."
	}
	return string([]rune(s)[:maxRunes-3]) + "..."
}
