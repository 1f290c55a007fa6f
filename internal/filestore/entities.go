package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edgard/plexybot/internal/knowledge"
)

type indexEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameKey   string `json:"name_key"`
	SearchKey string `json:"search_key"`
}

type entityRepo[T knowledge.Record[T]] struct {
	mu        sync.RWMutex
	dir       string
	indexPath string
	index     []indexEntry
	logger    *slog.Logger
}

func openEntityRepo[T knowledge.Record[T]](root, name string, logger *slog.Logger) (*entityRepo[T], error) {
	r := &entityRepo[T]{
		dir:       filepath.Join(root, name),
		indexPath: filepath.Join(root, name+"_index.json"),
		logger:    logger.With("collection", name),
	}
	if err := readJSON(r.indexPath, &r.index); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s index: %w", name, err)
	}
	return r, nil
}

func (r *entityRepo[T]) recordPath(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *entityRepo[T]) load(id string) (T, error) {
	var rec T
	if err := readJSON(r.recordPath(id), &rec); err != nil {
		return rec, fmt.Errorf("read record %s: %w", id, err)
	}
	return rec, nil
}

func (r *entityRepo[T]) position(key string) int {
	for i, e := range r.index {
		if e.NameKey == key {
			return i
		}
	}
	return -1
}

func (r *entityRepo[T]) FindByKey(_ context.Context, key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.position(key)
	if i < 0 {
		var zero T
		return zero, knowledge.ErrNotFound
	}
	return r.load(r.index[i].ID)
}

func (r *entityRepo[T]) collect(ctx context.Context, limit int, match func(indexEntry) bool) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, e := range r.index {
		if !match(e) {
			continue
		}
		rec, err := r.load(e.ID)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable record", "entity", e.Name, "error", err)
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *entityRepo[T]) FindNameContaining(ctx context.Context, fragment string, limit int) ([]T, error) {
	return r.collect(ctx, limit, func(e indexEntry) bool { return strings.Contains(e.NameKey, fragment) })
}

func (r *entityRepo[T]) Search(ctx context.Context, keyword string, limit int) ([]T, error) {
	return r.collect(ctx, limit, func(e indexEntry) bool { return strings.Contains(e.SearchKey, keyword) })
}

func (r *entityRepo[T]) List(ctx context.Context, limit int) ([]T, error) {
	return r.collect(ctx, limit, func(indexEntry) bool { return true })
}

func (r *entityRepo[T]) Save(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := indexEntry{
		Name:      rec.DisplayName(),
		NameKey:   knowledge.NameKey(rec.DisplayName()),
		SearchKey: rec.SearchText(),
	}
	i := r.position(entry.NameKey)
	if i >= 0 {
		entry.ID = r.index[i].ID
	} else {
		entry.ID = uuid.NewString()
	}

	if err := writeJSON(r.recordPath(entry.ID), rec); err != nil {
		return err
	}

	next := append([]indexEntry(nil), r.index...)
	if i >= 0 {
		next[i] = entry
	} else {
		next = append(next, entry)
	}
	if err := writeJSON(r.indexPath, next); err != nil {
		return err
	}
	r.index = next
	return nil
}

func (r *entityRepo[T]) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.position(key)
	if i < 0 {
		return knowledge.ErrNotFound
	}
	id := r.index[i].ID
	next := append(append([]indexEntry(nil), r.index[:i]...), r.index[i+1:]...)
	if err := writeJSON(r.indexPath, next); err != nil {
		return err
	}
	r.index = next
	if err := os.Remove(r.recordPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.WarnContext(ctx, "Failed to remove record file", "id", id, "error", err)
	}
	return nil
}

func (r *entityRepo[T]) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.index), nil
}

// compact rewrites the index and deletes record files it does not reference.
func (r *entityRepo[T]) compact() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeJSON(r.indexPath, r.index); err != nil {
		return 0, err
	}
	live := make(map[string]struct{}, len(r.index))
	for _, e := range r.index {
		live[e.ID+".json"] = struct{}{}
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", r.dir, err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := live[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
