// Package storage builds the knowledge store from configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/database"
	"github.com/edgard/plexybot/internal/filestore"
	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/mongostore"
)

// Open connects the configured backend. When the backend cannot be reached
// the returned store is degraded: it answers every read with "not found"
// and drops writes, so the bot keeps serving AI answers without persistence.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) *knowledge.Store {
	log := logger.With("component", "storage")

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		log.ErrorContext(ctx, "Storage backend unavailable, running in degraded mode", "backend", cfg.Backend, "error", err)
		return knowledge.NewDegradedStore(logger)
	}

	log.InfoContext(ctx, "Storage backend ready", "backend", cfg.Backend)
	return knowledge.NewStore(backend, logger)
}

func openBackend(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (knowledge.Backend, error) {
	switch cfg.Backend {
	case "sqlite":
		return database.Open(cfg.SQLite.Path, logger)
	case "mongo":
		return mongostore.Open(ctx, mongostore.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		}, logger)
	case "file":
		return filestore.Open(cfg.File.Dir, logger)
	case "memory":
		return knowledge.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
