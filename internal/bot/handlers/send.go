package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	sendMessageTimeout  = 10 * time.Second
	aiProcessingTimeout = 2 * time.Minute
	storeTimeout        = 5 * time.Second
)

// reply is an outgoing message.
type reply struct {
	text     string
	markdown bool
	markup   models.ReplyMarkup
}

func markdownReply(text string, markup models.ReplyMarkup) reply {
	return reply{text: text, markdown: true, markup: markup}
}

func plainReply(text string, markup models.ReplyMarkup) reply {
	return reply{text: text, markup: markup}
}

func engineReply(r engine.Reply, markup models.ReplyMarkup) reply {
	return reply{text: r.Text, markdown: r.Markdown, markup: markup}
}

func parseMode(markdown bool) models.ParseMode {
	if markdown {
		return models.ParseModeMarkdownV1
	}
	return ""
}

// isParseError reports whether Telegram rejected the message's Markdown.
func isParseError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "can't parse entities")
}

// send delivers r, resending it as plain text when Telegram cannot parse the Markdown.
func send(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, r reply) (*models.Message, error) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	text := format.Truncate(r.text)
	msg, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode(r.markdown),
		ReplyMarkup: r.markup,
	})
	if err == nil || !r.markdown || !isParseError(err) {
		if err != nil {
			return nil, fmt.Errorf("failed to send message: %w", err)
		}
		return msg, nil
	}

	log.WarnContext(ctx, "Markdown rejected, resending as plain text", "error", err, "chat_id", chatID)
	msg, err = b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        format.Truncate(format.StripMarkdown(r.text)),
		ReplyMarkup: r.markup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send plain text message: %w", err)
	}
	return msg, nil
}

// edit replaces the text of a sent message with the same Markdown fallback as send.
func edit(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, r reply) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        format.Truncate(r.text),
		ParseMode:   parseMode(r.markdown),
		ReplyMarkup: r.markup,
	}
	_, err := b.EditMessageText(sendCtx, params)
	if err != nil && r.markdown && isParseError(err) {
		log.WarnContext(ctx, "Markdown rejected, editing as plain text", "error", err, "chat_id", chatID)
		params.Text = format.Truncate(format.StripMarkdown(r.text))
		params.ParseMode = ""
		_, err = b.EditMessageText(sendCtx, params)
	}
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// respond sends r and logs a failure.
func respond(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, r reply) {
	if _, err := send(ctx, b, log, chatID, r); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

func profileOf(u *models.User) knowledge.Profile {
	if u == nil {
		return knowledge.Profile{}
	}
	return knowledge.Profile{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}

// recordInteraction appends to the user's journal. Failures are logged only.
func recordInteraction(ctx context.Context, deps HandlerDeps, u *models.User, section knowledge.Section, query string) {
	if u == nil {
		return
	}
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := deps.Store.Journal.RecordInteraction(dbCtx, profileOf(u), section, query); err != nil {
		deps.Logger.WarnContext(ctx, "Failed to record interaction", "error", err, "user_id", u.ID, "section", section)
	}
}
