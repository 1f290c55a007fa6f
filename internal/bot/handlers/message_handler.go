package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/knowledge"
)

// NewMessageHandler returns the default handler for messages no command
// matched: photos go to plant recognition, text to the conversation.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil {
		log.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
		return
	}
	msg := update.Message

	switch {
	case len(msg.Photo) > 0:
		handlePhoto(ctx, b, h.deps, msg)
	case strings.TrimSpace(msg.Text) != "":
		h.handleText(ctx, b, msg)
	default:
		log.DebugContext(ctx, "Ignoring message without text or photo", "chat_id", msg.Chat.ID, "message_id", msg.ID)
	}
}

func (h messageHandler) handleText(ctx context.Context, b *bot.Bot, msg *models.Message) {
	log := h.deps.Logger.With("handler", "message")
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	if data, ok := menuLabels[text]; ok {
		navigate(ctx, b, h.deps, screen{chatID: chatID, user: msg.From}, data)
		return
	}

	err := h.deps.Sessions.Do(ctx, msg.From.ID, func(ctx context.Context, sess *conversation.Session) error {
		if sess.State == conversation.AwaitingPlantImage {
			respond(ctx, b, log, chatID, markdownReply(h.deps.Config.Messages.PlantImagePrompt, cancelKeyboard()))
			return nil
		}

		state, problem := sess.State, sess.Problem
		if state.Awaiting() {
			if err := sess.Apply(conversation.ReplyConsumed, ""); err != nil {
				return err
			}
		}

		if state == conversation.AwaitingFeedback {
			h.saveFeedback(ctx, b, msg, text)
			return nil
		}

		stop := keepTyping(ctx, b, log, chatID)
		aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
		r := h.answer(aiCtx, state, problem, text)
		cancel()
		stop()

		if p := plantOf(r); p != nil {
			sess.LastPlant = p.Name
		}
		recordInteraction(ctx, h.deps, msg.From, r.Section, text)
		log.InfoContext(ctx, "Answering message",
			"chat_id", chatID, "user_id", msg.From.ID, "state", state, "origin", r.Origin.String(), "section", r.Section)
		respond(ctx, b, log, chatID, engineReply(r, markupFor(r)))
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to process message", "error", err, "chat_id", chatID, "user_id", msg.From.ID)
	}
}

// answer produces the reply for text sent while the session was in state.
func (h messageHandler) answer(ctx context.Context, state conversation.State, problem knowledge.ProblemKind, text string) engine.Reply {
	e := h.deps.Engine
	switch state {
	case conversation.AwaitingGeneralQuestion:
		return e.AnswerQuestion(ctx, text)
	case conversation.AwaitingVitaminQuery:
		return e.RecommendVitamins(ctx, text)
	case conversation.AwaitingProblemDescription:
		return e.DiagnoseProblem(ctx, text, problem)
	case conversation.AwaitingPlantName:
		return e.PlantCare(ctx, text)
	default:
		return e.Respond(ctx, text)
	}
}

func (h messageHandler) saveFeedback(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	log := h.deps.Logger.With("handler", "feedback")

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	fb, err := h.deps.Store.Journal.SaveFeedback(dbCtx, profileOf(msg.From), text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to save feedback", "error", err, "user_id", msg.From.ID)
		respond(ctx, b, log, msg.Chat.ID, plainReply(h.deps.Config.Messages.GeneralError, mainMenuKeyboard()))
		return
	}
	log.InfoContext(ctx, "Feedback saved", "feedback_id", fb.ID, "user_id", msg.From.ID)
	recordInteraction(ctx, h.deps, msg.From, knowledge.SectionFeedback, "")
	respond(ctx, b, log, msg.Chat.ID, plainReply(h.deps.Config.Messages.FeedbackThanks, mainMenuKeyboard()))
}
