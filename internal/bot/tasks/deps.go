// Package tasks implements the bot's scheduled maintenance tasks.
package tasks

import (
	"log/slog"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/knowledge"
)

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    *knowledge.Store
	Sessions *conversation.Manager
	Config   *config.Config
}
