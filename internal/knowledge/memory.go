package knowledge

import (
	"context"
	"slices"
	"strings"
	"sync"
)

type memoryRepo[T Record[T]] struct {
	mu      sync.RWMutex
	order   []string
	records map[string]T
}

func newMemoryRepo[T Record[T]]() *memoryRepo[T] {
	return &memoryRepo[T]{records: make(map[string]T)}
}

func (r *memoryRepo[T]) FindByKey(_ context.Context, key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *memoryRepo[T]) collect(limit int, match func(key string, rec T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, key := range r.order {
		rec := r.records[key]
		if match(key, rec) {
			out = append(out, rec.Clone())
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (r *memoryRepo[T]) FindNameContaining(_ context.Context, fragment string, limit int) ([]T, error) {
	return r.collect(limit, func(key string, _ T) bool { return strings.Contains(key, fragment) }), nil
}

func (r *memoryRepo[T]) Search(_ context.Context, keyword string, limit int) ([]T, error) {
	return r.collect(limit, func(_ string, rec T) bool { return strings.Contains(rec.SearchText(), keyword) }), nil
}

func (r *memoryRepo[T]) List(_ context.Context, limit int) ([]T, error) {
	return r.collect(limit, func(string, T) bool { return true }), nil
}

func (r *memoryRepo[T]) Save(_ context.Context, rec T) error {
	key := NameKey(rec.DisplayName())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[key]; !ok {
		r.order = append(r.order, key)
	}
	r.records[key] = rec.Clone()
	return nil
}

func (r *memoryRepo[T]) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[key]; !ok {
		return ErrNotFound
	}
	delete(r.records, key)
	r.order = slices.DeleteFunc(r.order, func(k string) bool { return k == key })
	return nil
}

func (r *memoryRepo[T]) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// MemoryBackend keeps everything in process memory. Contents are lost on exit.
type MemoryBackend struct {
	plants   *memoryRepo[*Plant]
	vitamins *memoryRepo[*Vitamin]

	mu       sync.RWMutex
	users    map[int64]User
	feedback []Feedback
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		plants:   newMemoryRepo[*Plant](),
		vitamins: newMemoryRepo[*Vitamin](),
		users:    make(map[int64]User),
	}
}

func (m *MemoryBackend) Plants() Repository[*Plant]     { return m.plants }
func (m *MemoryBackend) Vitamins() Repository[*Vitamin] { return m.vitamins }
func (m *MemoryBackend) Users() UserRepository          { return m }
func (m *MemoryBackend) Feedback() FeedbackRepository   { return m }
func (m *MemoryBackend) Ping(context.Context) error     { return nil }
func (m *MemoryBackend) Maintain(context.Context) error { return nil }
func (m *MemoryBackend) Close(context.Context) error    { return nil }

func (m *MemoryBackend) GetUser(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (m *MemoryBackend) SaveUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u.Clone()
	return nil
}

func (m *MemoryBackend) CountUsers(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryBackend) AddFeedback(_ context.Context, fb *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, *fb)
	return nil
}

func (m *MemoryBackend) CountFeedback(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.feedback), nil
}
