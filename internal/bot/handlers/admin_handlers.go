package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/knowledge"
)

// NewDeleteHandler returns a handler for /plexy_delete, which removes a
// plant or vitamin record by name.
func NewDeleteHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteHandler{deps}.Handle
}

type deleteHandler struct {
	deps HandlerDeps
}

func (h deleteHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "delete")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Delete handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	_, name, _ := strings.Cut(strings.TrimSpace(update.Message.Text), " ")
	name = strings.TrimSpace(name)
	if name == "" {
		respond(ctx, b, log, chatID, plainReply(msgs.DeleteUsage, nil))
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := h.deps.Store.Plants.Delete(dbCtx, name)
	if errors.Is(err, knowledge.ErrNotFound) {
		err = h.deps.Store.Vitamins.Delete(dbCtx, name)
	}
	switch {
	case errors.Is(err, knowledge.ErrNotFound):
		respond(ctx, b, log, chatID, plainReply(fmt.Sprintf(msgs.DeleteNotFoundFmt, name), nil))
	case err != nil:
		log.ErrorContext(ctx, "Failed to delete record", "error", err, "entity", name)
		respond(ctx, b, log, chatID, plainReply(msgs.GeneralError, nil))
	default:
		log.InfoContext(ctx, "Record deleted by admin", "entity", name, "user_id", update.Message.From.ID)
		respond(ctx, b, log, chatID, plainReply(fmt.Sprintf(msgs.DeleteSuccessFmt, name), nil))
	}
}

// NewStatsHandler returns a handler for /plexy_stats.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	st, err := h.deps.Store.Stats(dbCtx)
	if err != nil {
		// partial counts are still worth showing
		log.WarnContext(ctx, "Failed to collect some stats", "error", err)
	}

	text := fmt.Sprintf(msgs.StatsFmt, st.Plants, st.Vitamins, st.Users, st.Feedback)
	if st.Degraded {
		text += "\n\n" + msgs.DegradedNotice
	}
	respond(ctx, b, log, chatID, markdownReply(text, nil))
}
