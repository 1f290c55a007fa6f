package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/plexybot/internal/utils/keymutex"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 5

// MaxSearchLimit is the largest limit honoured by Search.
const MaxSearchLimit = 10

// UpsertResult reports what Upsert did.
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Inserted
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Catalog implements name lookup, keyword search and merge-on-write for one
// entity kind on top of a Repository.
type Catalog[T Record[T]] struct {
	repo   Repository[T]
	locks  *keymutex.KeyedMutex[string]
	logger *slog.Logger
	now    func() time.Time
}

// NewCatalog wraps repo.
func NewCatalog[T Record[T]](repo Repository[T], logger *slog.Logger) *Catalog[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog[T]{
		repo:   repo,
		locks:  keymutex.New[string](),
		logger: logger,
		now:    time.Now,
	}
}

// GetByName finds a record by exact case-insensitive name, falling back to
// the first record (by insertion order) whose name contains the query.
func (c *Catalog[T]) GetByName(ctx context.Context, name string) (T, error) {
	var zero T
	key := NameKey(name)
	if key == "" {
		return zero, ErrNotFound
	}

	rec, err := c.repo.FindByKey(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return zero, fmt.Errorf("lookup %q: %w", name, err)
	}

	matches, err := c.repo.FindNameContaining(ctx, key, 1)
	if err != nil {
		return zero, fmt.Errorf("substring lookup %q: %w", name, err)
	}
	if len(matches) == 0 {
		return zero, ErrNotFound
	}
	return matches[0], nil
}

// Search matches keyword against names, aliases and descriptions.
func (c *Catalog[T]) Search(ctx context.Context, keyword string, limit int) ([]T, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	} else if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	res, err := c.repo.Search(ctx, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	return res, nil
}

// Upsert stores rec, merging it into an existing record of the same name.
// Writes for the same name are serialized; a merge that changes nothing
// leaves the stored record untouched.
func (c *Catalog[T]) Upsert(ctx context.Context, rec T) (UpsertResult, error) {
	key := NameKey(rec.DisplayName())
	if key == "" {
		return Unchanged, errors.New("entity name is empty")
	}

	unlock := c.locks.Lock(key)
	defer unlock()

	existing, err := c.repo.FindByKey(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		fresh := rec.Clone()
		fresh.Touch(c.now())
		if err := c.repo.Save(ctx, fresh); err != nil {
			return Unchanged, fmt.Errorf("insert %q: %w", rec.DisplayName(), err)
		}
		c.logger.DebugContext(ctx, "Entity inserted", "kind", rec.Kind(), "entity", rec.DisplayName())
		return Inserted, nil
	case err != nil:
		return Unchanged, fmt.Errorf("load %q for merge: %w", rec.DisplayName(), err)
	}

	merged := existing.Clone()
	if !merged.MergeFrom(rec) {
		return Unchanged, nil
	}
	merged.Touch(c.now())
	if err := c.repo.Save(ctx, merged); err != nil {
		return Unchanged, fmt.Errorf("update %q: %w", rec.DisplayName(), err)
	}
	c.logger.DebugContext(ctx, "Entity merged", "kind", rec.Kind(), "entity", rec.DisplayName())
	return Updated, nil
}

// Modify applies fn to the stored record under the same lock Upsert uses
// and saves the result when fn reports a change.
func (c *Catalog[T]) Modify(ctx context.Context, name string, fn func(T) bool) error {
	key := NameKey(name)
	unlock := c.locks.Lock(key)
	defer unlock()

	rec, err := c.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load %q: %w", name, err)
	}
	if !fn(rec) {
		return nil
	}
	rec.Touch(c.now())
	if err := c.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Delete removes the record with the exact given name.
func (c *Catalog[T]) Delete(ctx context.Context, name string) error {
	key := NameKey(name)
	unlock := c.locks.Lock(key)
	defer unlock()

	if err := c.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

// List returns up to limit records in insertion order.
func (c *Catalog[T]) List(ctx context.Context, limit int) ([]T, error) {
	return c.repo.List(ctx, limit)
}

// Count returns the number of stored records.
func (c *Catalog[T]) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}
