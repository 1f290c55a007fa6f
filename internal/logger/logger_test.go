package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/logger"
)

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "привет", max: 10, want: "привет"},
		{name: "exact", in: "привет", max: 6, want: "привет"},
		{name: "cut on runes", in: "витамин C для иммунитета", max: 10, want: "витамин..."},
		{name: "tiny limit", in: "растение", max: 2, want: "..."},
		{name: "empty", in: "", max: 5, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.Preview(tt.in, tt.max))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	called := false
	handler := logger.Middleware(log)(func(context.Context, *bot.Bot, *models.Update) {
		called = true
	})

	handler(context.Background(), nil, &models.Update{
		ID: 42,
		Message: &models.Message{
			ID:   7,
			Chat: models.Chat{ID: 100},
			From: &models.User{ID: 5},
			Text: "Расскажи про витамин D, пожалуйста, очень подробно и с примерами продуктов",
		},
	})
	require.True(t, called)

	out := buf.String()
	assert.Contains(t, out, "Processing update")
	assert.Contains(t, out, "Finished processing update")
	assert.Contains(t, out, "update_type=message")
	assert.Contains(t, out, "user_id=5")
	assert.NotContains(t, out, "примерами продуктов")

	buf.Reset()
	handler(context.Background(), nil, &models.Update{
		ID: 43,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb",
			From: models.User{ID: 6},
			Data: "vitamin_c",
		},
	})
	assert.Contains(t, buf.String(), "update_type=callback_query")
	assert.Contains(t, buf.String(), "data=vitamin_c")
}
