package telegram_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/bot/handlers"
	"github.com/edgard/plexybot/internal/telegram"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"PLEXY","username":"plexy_bot"}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTelegramBot(t *testing.T) {
	t.Parallel()

	_, err := telegram.NewTelegramBot("", discard())
	require.Error(t, err)

	srv := newServer(t)
	b, err := telegram.NewTelegramBot("123:abc", discard(), tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	_, err := telegram.RegisterHandlers(nil, discard(), nil)
	require.Error(t, err)

	srv := newServer(t)
	b, err := telegram.NewTelegramBot("123:abc", discard(), tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)

	noop := func(context.Context, *tgbot.Bot, *models.Update) {}
	n, err := telegram.RegisterHandlers(b, discard(), map[string]handlers.RegisteredHandler{
		"/a":   {HandlerType: tgbot.HandlerTypeMessageText, Pattern: "a", Handler: noop, MatchType: tgbot.MatchTypeCommandStartOnly},
		"/b":   {HandlerType: tgbot.HandlerTypeMessageText, Pattern: "b", Handler: noop, MatchType: tgbot.MatchTypeCommandStartOnly},
		"nil":  {HandlerType: tgbot.HandlerTypeMessageText, Pattern: "c"},
		"data": {HandlerType: tgbot.HandlerTypeCallbackQueryData, Handler: noop, MatchType: tgbot.MatchTypePrefix},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = telegram.RegisterHandlers(b, discard(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
