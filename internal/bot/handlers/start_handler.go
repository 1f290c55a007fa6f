package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/knowledge"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler registers the user and shows the main menu.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	from := update.Message.From

	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", from.ID)

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	if _, err := h.deps.Store.Journal.RegisterUser(dbCtx, profileOf(from)); err != nil {
		log.WarnContext(ctx, "Failed to register user", "error", err, "user_id", from.ID)
	}
	cancel()
	if err := h.deps.Sessions.Reset(ctx, from.ID); err != nil {
		log.WarnContext(ctx, "Failed to reset session", "error", err, "user_id", from.ID)
	}
	recordInteraction(ctx, h.deps, from, knowledge.SectionStart, "")

	respond(ctx, b, log, chatID, markdownReply(format.Welcome(from.FirstName), menuReplyKeyboard()))
	if h.deps.Store.Degraded() {
		respond(ctx, b, log, chatID, plainReply(h.deps.Config.Messages.DegradedNotice, nil))
	}
	respond(ctx, b, log, chatID, plainReply(h.deps.Config.Messages.MainMenu, mainMenuKeyboard()))
}
