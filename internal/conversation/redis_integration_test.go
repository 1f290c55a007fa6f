//go:build integration

package conversation_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/knowledge"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PLEXY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PLEXY_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	store, err := conversation.NewRedisStore(ctx, config.RedisConfig{Addr: addr}, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	userID := time.Now().UnixNano()
	t.Cleanup(func() { _ = store.Delete(context.Background(), userID) })

	got, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, conversation.Idle, got.State)

	s := conversation.NewSession(userID)
	require.NoError(t, s.Apply(conversation.StartProblem, knowledge.ProblemPlant))
	s.LastPlant = "Монстера"
	require.NoError(t, store.Save(ctx, s))

	got, err = store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, conversation.AwaitingProblemDescription, got.State)
	assert.Equal(t, knowledge.ProblemPlant, got.Problem)
	assert.Equal(t, "Монстера", got.LastPlant)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, userID))
	got, err = store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, conversation.Idle, got.State)
}
