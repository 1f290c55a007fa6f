package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/format"
)

// NewCallbackHandler returns the handler for inline keyboard presses.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Callback handler received update without callback query", "update_id", update.ID)
		return
	}
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_id", cq.ID)
	}

	msg := cq.Message.Message
	if msg == nil {
		log.WarnContext(ctx, "Callback query without accessible message", "callback_id", cq.ID, "data", cq.Data)
		return
	}
	user := cq.From
	s := screen{chatID: msg.Chat.ID, messageID: msg.ID, user: &user}
	data := cq.Data

	// exact matches first: "plant_problems" is a menu entry, not a plant action
	if navigate(ctx, b, h.deps, s, data) {
		return
	}

	switch {
	case data == cbCancel:
		cancelPrompt(ctx, b, h.deps, s)
	case data == cbVitaminsAll:
		r := h.deps.Engine.ListVitamins(ctx)
		recordInteraction(ctx, h.deps, s.user, r.Section, data)
		s.show(ctx, b, h.deps, engineReply(r, backKeyboard(cbVitaminsMenu)))
	case data == cbPlantsAll:
		r := h.deps.Engine.ListWasteTips(ctx)
		recordInteraction(ctx, h.deps, s.user, r.Section, data)
		s.show(ctx, b, h.deps, engineReply(r, backKeyboard(cbPlantsMenu)))
	case vitaminButtons[data] != "":
		h.catalogEntry(ctx, b, s, data, h.deps.Engine.Vitamin, vitaminButtons[data], cbVitaminsMenu)
	case wasteButtons[data] != "":
		h.catalogEntry(ctx, b, s, data, h.deps.Engine.WasteTip, wasteButtons[data], cbPlantsMenu)
	case strings.HasPrefix(data, cbPlantPrefix):
		h.plantAction(ctx, b, s, strings.TrimPrefix(data, cbPlantPrefix))
	default:
		log.WarnContext(ctx, "Unknown callback data", "data", data, "user_id", user.ID)
	}
}

func (h callbackHandler) catalogEntry(ctx context.Context, b *bot.Bot, s screen, data string,
	lookup func(context.Context, string) (engine.Reply, bool), name, back string,
) {
	r, ok := lookup(ctx, name)
	if !ok {
		s.show(ctx, b, h.deps, plainReply(h.deps.Config.Messages.NotFound, backKeyboard(back)))
		return
	}
	recordInteraction(ctx, h.deps, s.user, r.Section, data)
	s.show(ctx, b, h.deps, engineReply(r, backKeyboard(back)))
}

// plantAction handles "<action>_<name>"; an empty name refers to the
// session's last plant.
func (h callbackHandler) plantAction(ctx context.Context, b *bot.Bot, s screen, rest string) {
	log := h.deps.Logger.With("handler", "callback")

	action, name, _ := strings.Cut(rest, "_")
	name = strings.TrimSpace(name)
	if name == "" {
		err := h.deps.Sessions.Do(ctx, s.user.ID, func(_ context.Context, sess *conversation.Session) error {
			name = sess.LastPlant
			return nil
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to load last plant", "error", err, "user_id", s.user.ID)
		}
	}
	if name == "" {
		s.show(ctx, b, h.deps, plainReply(h.deps.Config.Messages.NotFound, backKeyboard(cbPlantsMenu)))
		return
	}

	stop := keepTyping(ctx, b, log, s.chatID)
	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	var r engine.Reply
	if action == "info" {
		r = h.deps.Engine.PlantInfo(aiCtx, name)
	} else if section, ok := format.ParseCareSection(action); ok {
		r = h.deps.Engine.PlantSection(aiCtx, name, section)
	} else {
		cancel()
		stop()
		log.WarnContext(ctx, "Unknown plant action", "action", action, "plant", name)
		return
	}
	cancel()
	stop()

	recordInteraction(ctx, h.deps, s.user, r.Section, action+" "+name)
	// the answer is sent as a new message so the buttons stay usable
	respond(ctx, b, log, s.chatID, engineReply(r, plantActionsKeyboard(name)))
}
