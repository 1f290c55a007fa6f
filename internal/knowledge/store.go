package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Store is the knowledge base handed to the rest of the application.
type Store struct {
	Plants   *Catalog[*Plant]
	Vitamins *Catalog[*Vitamin]
	Journal  *Journal

	backend  Backend
	degraded bool
	logger   *slog.Logger
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.Plants.now = now
		s.Vitamins.now = now
		s.Journal.now = now
	}
}

// NewStore builds a Store over backend.
func NewStore(backend Backend, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "knowledge_store")
	s := &Store{
		Plants:   NewCatalog(backend.Plants(), log.With("kind", KindPlant)),
		Vitamins: NewCatalog(backend.Vitamins(), log.With("kind", KindVitamin)),
		Journal:  newJournal(backend.Users(), backend.Feedback(), log),
		backend:  backend,
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDegradedStore returns a Store whose reads find nothing and whose writes
// are dropped with a warning.
func NewDegradedStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := NewStore(newDegradedBackend(logger), logger)
	s.degraded = true
	return s
}

// Degraded reports whether the store runs without persistence.
func (s *Store) Degraded() bool { return s.degraded }

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Maintain runs backend housekeeping.
func (s *Store) Maintain(ctx context.Context) error {
	if s.degraded {
		s.logger.WarnContext(ctx, "Skipping maintenance, store is degraded")
		return nil
	}
	return s.backend.Maintain(ctx)
}

// Close releases the backend.
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

// Stats summarizes the store contents.
type Stats struct {
	Plants   int  `json:"plants"`
	Vitamins int  `json:"vitamins"`
	Users    int  `json:"users"`
	Feedback int  `json:"feedback"`
	Degraded bool `json:"degraded"`
}

// Stats counts records of every kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Degraded: s.degraded}
	var errs []error
	var err error
	if st.Plants, err = s.Plants.Count(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count plants: %w", err))
	}
	if st.Vitamins, err = s.Vitamins.Count(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count vitamins: %w", err))
	}
	if st.Users, err = s.backend.Users().CountUsers(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count users: %w", err))
	}
	if st.Feedback, err = s.backend.Feedback().CountFeedback(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count feedback: %w", err))
	}
	return st, errors.Join(errs...)
}
