package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/knowledge"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	recordInteraction(ctx, h.deps, update.Message.From, knowledge.SectionHelp, "")
	respond(ctx, b, log, update.Message.Chat.ID, markdownReply(format.Help(), mainMenuKeyboard()))
}
