package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler is a handler with the pattern and middleware it is registered with.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// menuCommands open the same screens as the main menu buttons.
var menuCommands = map[string]string{
	"vitamins": cbVitaminsMenu,
	"plants":   cbPlantsMenu,
	"ai":       cbAIMenu,
	"problems": cbProblemsMenu,
	"faq":      cbFAQMenu,
	"feedback": cbFeedback,
}

// RegisterAllCommands returns every command and callback handler keyed by
// a unique name. Plain messages go to NewMessageHandler, the default handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(name string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))
	command("cancel", NewCancelHandler(deps))
	for name, data := range menuCommands {
		command(name, NewMenuHandler(deps, data))
	}

	adminMiddleware := AdminOnly(deps)
	command("plexy_delete", NewDeleteHandler(deps), adminMiddleware)
	command("plexy_stats", NewStatsHandler(deps), adminMiddleware)

	handlers["callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "",
		Handler:     NewCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}
