//go:build integration

package mongostore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/knowledge"
	"github.com/edgard/plexybot/internal/mongostore"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PLEXY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PLEXY_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	backend, err := mongostore.Open(ctx, mongostore.Config{
		URI:      uri,
		Database: fmt.Sprintf("plexy_test_%d", time.Now().UnixNano()),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close(ctx) })

	store := knowledge.NewStore(backend, nil)

	for _, name := range []string{"Фикус Бенджамина", "Монстера", "Фикус каучуконосный"} {
		_, err := store.Plants.Upsert(ctx, &knowledge.Plant{Name: name, Description: "растение " + name})
		require.NoError(t, err)
	}

	got, err := store.Plants.GetByName(ctx, "монстера")
	require.NoError(t, err)
	assert.Equal(t, "Монстера", got.Name)

	got, err = store.Plants.GetByName(ctx, "фикус")
	require.NoError(t, err)
	assert.Equal(t, "Фикус Бенджамина", got.Name)

	found, err := store.Plants.Search(ctx, "каучук", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, store.Journal.RecordInteraction(ctx, knowledge.Profile{ID: 3}, knowledge.SectionPlants, "монстера"))
	u, err := store.Journal.User(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, u.InteractionCount)

	_, err = store.Journal.SaveFeedback(ctx, knowledge.Profile{ID: 3}, "ok")
	require.NoError(t, err)
	require.NoError(t, store.Maintain(ctx))
}
