package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewMenuHandler returns a command handler that opens the screen named by
// the callback data, the same one the inline button opens.
func NewMenuHandler(deps HandlerDeps, data string) bot.HandlerFunc {
	return menuHandler{deps: deps, data: data}.Handle
}

type menuHandler struct {
	deps HandlerDeps
	data string
}

func (h menuHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "menu", "menu", h.data)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Menu handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	if !navigate(ctx, b, h.deps, screen{chatID: update.Message.Chat.ID, user: update.Message.From}, h.data) {
		log.ErrorContext(ctx, "Menu command bound to unknown screen")
	}
}

// NewCancelHandler returns a handler for the /cancel command.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		h.deps.Logger.WarnContext(ctx, "Cancel handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	cancelPrompt(ctx, b, h.deps, screen{chatID: update.Message.Chat.ID, user: update.Message.From})
}
