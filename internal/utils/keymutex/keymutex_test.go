package keymutex_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/utils/keymutex"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	km := keymutex.New[string]()
	counter := 0
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("монстера")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, km.Len())
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	km := keymutex.New[int64]()
	unlockA := km.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(2)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "lock on a different key blocked")
	}
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	t.Parallel()

	km := keymutex.New[string]()
	unlock := km.Lock("a")
	unlock()
	unlock()

	assert.Zero(t, km.Len())
	relock := km.Lock("a")
	relock()
}
