package conversation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/utils/keymutex"
)

// Manager serializes each user's updates and persists their session.
type Manager struct {
	store Store
	locks *keymutex.KeyedMutex[int64]
	log   *slog.Logger
}

// NewManager returns a Manager over store.
func NewManager(store Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store: store,
		locks: keymutex.New[int64](),
		log:   log.With("component", "conversation"),
	}
}

// NewStoreFromConfig builds the configured session store.
func NewStoreFromConfig(ctx context.Context, cfg config.ConversationConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(ctx, cfg.Redis, cfg.SessionTTL)
	case "memory", "":
		return NewMemoryStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown conversation backend %q", cfg.Backend)
	}
}

// Do runs fn with the user's session while holding the user's lock and saves
// the session afterwards. When fn fails the session is not saved.
//
// A session that cannot be loaded is replaced by an idle one so the user is
// still answered.
func (m *Manager) Do(ctx context.Context, userID int64, fn func(ctx context.Context, s *Session) error) error {
	unlock := m.locks.Lock(userID)
	defer unlock()

	s, err := m.store.Load(ctx, userID)
	if err != nil {
		m.log.WarnContext(ctx, "Failed to load session, starting idle", "user_id", userID, "error", err)
		s = NewSession(userID)
	}
	before := s.State

	if err := fn(ctx, s); err != nil {
		return err
	}

	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if s.State != before {
		m.log.DebugContext(ctx, "Conversation state changed", "user_id", userID, "from", before, "to", s.State)
	}
	return nil
}

// Reset drops the user's session.
func (m *Manager) Reset(ctx context.Context, userID int64) error {
	unlock := m.locks.Lock(userID)
	defer unlock()
	return m.store.Delete(ctx, userID)
}

// Prune removes expired sessions when the store keeps them itself.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	p, ok := m.store.(interface {
		Prune(ctx context.Context) (int, error)
	})
	if !ok {
		return 0, nil
	}
	return p.Prune(ctx)
}

// Close releases the session store.
func (m *Manager) Close() error {
	return m.store.Close()
}
