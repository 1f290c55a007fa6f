// Package keymutex provides a mutex keyed by an arbitrary comparable value.
// Locks for different keys never block each other; entries are dropped once
// no goroutine holds or waits for them.
package keymutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes work per key.
type KeyedMutex[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// New returns an empty KeyedMutex.
func New[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{entries: make(map[K]*entry)}
}

// Lock acquires the lock for key and returns the matching unlock function.
func (k *KeyedMutex[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len reports how many keys currently have holders or waiters.
func (k *KeyedMutex[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
