package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/format"
	"github.com/edgard/plexybot/internal/knowledge"
)

// prompt asks the user for input and moves their session to wait for it.
type prompt struct {
	event   conversation.Event
	problem knowledge.ProblemKind
	section knowledge.Section
	text    func(config.MessagesConfig) string
}

var prompts = map[string]prompt{
	cbGeneralQuestion: {
		event:   conversation.StartGeneralQuestion,
		section: knowledge.SectionAIQuestion,
		text:    func(m config.MessagesConfig) string { return m.QuestionPrompt },
	},
	cbVitaminRecommend: {
		event:   conversation.StartVitaminQuery,
		section: knowledge.SectionVitaminAdvice,
		text:    func(m config.MessagesConfig) string { return m.VitaminPrompt },
	},
	cbPlantAnalysis: {
		event:   conversation.StartPlantImage,
		section: knowledge.SectionPhoto,
		text:    func(m config.MessagesConfig) string { return m.PlantImagePrompt },
	},
	cbPlantsSearch: {
		event:   conversation.StartPlantSearch,
		section: knowledge.SectionPlants,
		text:    func(m config.MessagesConfig) string { return m.PlantSearchPrompt },
	},
	cbNewPlantCare: {
		event:   conversation.StartPlantSearch,
		section: knowledge.SectionPlants,
		text:    func(m config.MessagesConfig) string { return m.PlantSearchPrompt },
	},
	cbVitaminProblems: {
		event:   conversation.StartProblem,
		problem: knowledge.ProblemVitamin,
		section: knowledge.SectionProblems,
		text:    func(m config.MessagesConfig) string { return m.ProblemVitamin },
	},
	cbPlantProblems: {
		event:   conversation.StartProblem,
		problem: knowledge.ProblemPlant,
		section: knowledge.SectionProblems,
		text:    func(m config.MessagesConfig) string { return m.ProblemPlant },
	},
	cbProblemTypePrefix + "vitamin": {
		event:   conversation.StartProblem,
		problem: knowledge.ProblemVitamin,
		section: knowledge.SectionProblems,
		text:    func(m config.MessagesConfig) string { return m.ProblemVitamin },
	},
	cbProblemTypePrefix + "plant": {
		event:   conversation.StartProblem,
		problem: knowledge.ProblemPlant,
		section: knowledge.SectionProblems,
		text:    func(m config.MessagesConfig) string { return m.ProblemPlant },
	},
	cbProblemTypePrefix + "general": {
		event:   conversation.StartProblem,
		problem: knowledge.ProblemGeneral,
		section: knowledge.SectionProblems,
		text:    func(m config.MessagesConfig) string { return m.ProblemGeneral },
	},
	cbFeedback: {
		event:   conversation.StartFeedback,
		section: knowledge.SectionFeedback,
		text:    func(m config.MessagesConfig) string { return m.FeedbackPrompt },
	},
}

// menu is a static screen.
type menu struct {
	section knowledge.Section
	render  func(config.MessagesConfig) reply
}

var menus = map[string]menu{
	cbMainMenu: {
		section: knowledge.SectionStart,
		render:  func(m config.MessagesConfig) reply { return plainReply(m.MainMenu, mainMenuKeyboard()) },
	},
	cbVitaminsMenu: {
		section: knowledge.SectionVitamins,
		render:  func(m config.MessagesConfig) reply { return markdownReply(m.VitaminsMenu, vitaminsKeyboard()) },
	},
	cbPlantsMenu: {
		section: knowledge.SectionPlants,
		render:  func(m config.MessagesConfig) reply { return markdownReply(m.PlantsMenu, plantsKeyboard()) },
	},
	cbAIMenu: {
		section: knowledge.SectionAIQuestion,
		render:  func(m config.MessagesConfig) reply { return markdownReply(m.AIMenu, aiKeyboard()) },
	},
	cbProblemsMenu: {
		section: knowledge.SectionProblems,
		render:  func(m config.MessagesConfig) reply { return markdownReply(m.ProblemsMenu, problemsKeyboard()) },
	},
	cbFAQMenu: {
		section: knowledge.SectionFAQ,
		render:  func(m config.MessagesConfig) reply { return markdownReply(m.FAQMenu, faqKeyboard()) },
	},
}

// screen is where a navigation lands: a new message, or an edit of the
// message carrying the pressed button when messageID is set.
type screen struct {
	chatID    int64
	messageID int
	user      *models.User
}

func (s screen) show(ctx context.Context, b *bot.Bot, deps HandlerDeps, r reply) {
	log := deps.Logger.With("handler", "navigation")
	if s.messageID != 0 {
		err := edit(ctx, b, log, s.chatID, s.messageID, r)
		if err == nil {
			return
		}
		log.WarnContext(ctx, "Failed to edit message, sending a new one", "error", err, "chat_id", s.chatID)
	}
	respond(ctx, b, log, s.chatID, r)
}

// navigate renders the menu or prompt behind data and reports whether data
// named one.
func navigate(ctx context.Context, b *bot.Bot, deps HandlerDeps, s screen, data string) bool {
	if m, ok := menus[data]; ok {
		recordInteraction(ctx, deps, s.user, m.section, data)
		s.show(ctx, b, deps, m.render(deps.Config.Messages))
		return true
	}
	if p, ok := prompts[data]; ok {
		startPrompt(ctx, b, deps, s, p)
		return true
	}
	if strings.HasPrefix(data, cbFAQPrefix) {
		text, ok := format.FAQ(strings.TrimPrefix(data, cbFAQPrefix))
		if !ok {
			return false
		}
		recordInteraction(ctx, deps, s.user, knowledge.SectionFAQ, data)
		s.show(ctx, b, deps, markdownReply(text, backKeyboard(cbFAQMenu)))
		return true
	}
	return false
}

func startPrompt(ctx context.Context, b *bot.Bot, deps HandlerDeps, s screen, p prompt) {
	log := deps.Logger.With("handler", "navigation")
	if s.user == nil {
		log.WarnContext(ctx, "Prompt requested without a sender", "chat_id", s.chatID)
		return
	}
	err := deps.Sessions.Do(ctx, s.user.ID, func(_ context.Context, sess *conversation.Session) error {
		return sess.Apply(p.event, p.problem)
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to start prompt", "error", err, "user_id", s.user.ID, "event", p.event)
		respond(ctx, b, log, s.chatID, plainReply(deps.Config.Messages.GeneralError, nil))
		return
	}
	recordInteraction(ctx, deps, s.user, p.section, "")
	s.show(ctx, b, deps, markdownReply(p.text(deps.Config.Messages), cancelKeyboard()))
}

// cancelPrompt returns the user's session to idle.
func cancelPrompt(ctx context.Context, b *bot.Bot, deps HandlerDeps, s screen) {
	log := deps.Logger.With("handler", "cancel")
	if s.user == nil {
		return
	}
	var was conversation.State
	err := deps.Sessions.Do(ctx, s.user.ID, func(_ context.Context, sess *conversation.Session) error {
		was = sess.State
		return sess.Apply(conversation.Cancel, "")
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to cancel", "error", err, "user_id", s.user.ID)
		respond(ctx, b, log, s.chatID, plainReply(deps.Config.Messages.GeneralError, nil))
		return
	}

	msgs := deps.Config.Messages
	text := msgs.Cancelled
	switch {
	case was == conversation.AwaitingFeedback:
		text = msgs.FeedbackCancelled
	case !was.Awaiting():
		text = msgs.NothingToCancel
	}
	s.show(ctx, b, deps, plainReply(text, mainMenuKeyboard()))
}

// plantOf returns the described plant when the reply is about a houseplant.
func plantOf(r engine.Reply) *knowledge.Plant {
	p, ok := r.Entity.(*knowledge.Plant)
	if !ok || p == nil || p.IsWaste() {
		return nil
	}
	return p
}

// markupFor attaches the care buttons to replies about a plant.
func markupFor(r engine.Reply) models.ReplyMarkup {
	if p := plantOf(r); p != nil {
		return plantActionsKeyboard(p.Name)
	}
	return nil
}
