package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/plexybot/internal/knowledge"
)

// Store implements knowledge.Backend on sqlite.
type Store struct {
	db       *sqlx.DB
	plants   *entityRepo[*knowledge.Plant]
	vitamins *entityRepo[*knowledge.Vitamin]
	logger   *slog.Logger
}

var _ knowledge.Backend = (*Store)(nil)

func componentLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.With("component", "sqlite_store")
}

// NewStore wraps a migrated database handle.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	log := componentLogger(logger)
	return &Store{
		db:       db,
		plants:   newEntityRepo[*knowledge.Plant](db, knowledge.KindPlant, log),
		vitamins: newEntityRepo[*knowledge.Vitamin](db, knowledge.KindVitamin, log),
		logger:   log,
	}
}

// Open connects to dbPath, migrates it and returns the backend.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := NewDB(dbPath, componentLogger(logger))
	if err != nil {
		return nil, err
	}
	return NewStore(db, logger), nil
}

func (s *Store) Plants() knowledge.Repository[*knowledge.Plant]     { return s.plants }
func (s *Store) Vitamins() knowledge.Repository[*knowledge.Vitamin] { return s.vitamins }
func (s *Store) Users() knowledge.UserRepository                    { return s }
func (s *Store) Feedback() knowledge.FeedbackRepository             { return s }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close(context.Context) error {
	CloseDB(s.db, s.logger)
	return nil
}

// Maintain runs VACUUM. It must run outside a transaction.
func (s *Store) Maintain(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
