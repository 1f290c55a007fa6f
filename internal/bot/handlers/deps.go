package handlers

import (
	"log/slog"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/knowledge"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    *knowledge.Store
	Engine   *engine.Engine
	Sessions *conversation.Manager
}
