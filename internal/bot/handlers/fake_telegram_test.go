package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/bot/handlers"
	"github.com/edgard/plexybot/internal/config"
	"github.com/edgard/plexybot/internal/conversation"
	"github.com/edgard/plexybot/internal/engine"
	"github.com/edgard/plexybot/internal/generative"
	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	testToken  = "123456:test-token"
	testAdmin  = int64(1000)
	testUserID = int64(2000)
	testChatID = int64(3000)
)

// apiCall is one request the bot made to the Bot API.
type apiCall struct {
	Method string
	Fields map[string]string
}

// fakeTelegram answers Bot API requests with canned results.
type fakeTelegram struct {
	srv *httptest.Server

	mu           sync.Mutex
	calls        []apiCall
	rejectMarkup bool
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()
	f := &fakeTelegram{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func requestFields(r *http.Request) map[string]string {
	fields := make(map[string]string)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)
		for k, v := range raw {
			if s, ok := v.(string); ok {
				fields[k] = s
				continue
			}
			b, _ := json.Marshal(v)
			fields[k] = string(b)
		}
		return fields
	}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		return fields
	}
	_ = r.ParseForm()
	for k, v := range r.Form {
		fields[k] = v[0]
	}
	return fields
}

func (f *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	fields := requestFields(r)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Fields: fields})
	reject := f.rejectMarkup
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"PLEXY","username":"plexy_bot"}}`)
	case "answerCallbackQuery", "deleteMessage", "sendChatAction":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	case "getFile":
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"big","file_unique_id":"u1","file_path":"photos/file_1.jpg"}}`)
	default:
		if reject && fields["parse_mode"] != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities: can't find end of the entity starting at byte offset 3"}`)
			return
		}
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":%d,"type":"private"}}}`, testChatID)
	}
}

func (f *fakeTelegram) rejectMarkdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectMarkup = true
}

// sent returns the calls of the given methods, in order.
func (f *fakeTelegram) sent(methods ...string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		for _, m := range methods {
			if c.Method == m {
				out = append(out, c)
			}
		}
	}
	return out
}

// texts returns the text of every sent or edited message.
func (f *fakeTelegram) texts() []string {
	var out []string
	for _, c := range f.sent("sendMessage", "editMessageText") {
		out = append(out, c.Fields["text"])
	}
	return out
}

func (f *fakeTelegram) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	require.NotEmpty(t, texts, "no message was sent")
	return texts[len(texts)-1]
}

func (f *fakeTelegram) count(method string) int {
	return len(f.sent(method))
}

// fakeGenerator stands in for the generative bridge.
type fakeGenerator struct {
	mu     sync.Mutex
	answer string
	image  string
	calls  int
	refs   []generative.ImageRef
}

func (g *fakeGenerator) Complete(context.Context, string, int, float32) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.answer == "" {
		return generative.FallbackStatus
	}
	return g.answer
}

func (g *fakeGenerator) CompleteWithImage(_ context.Context, _ string, ref generative.ImageRef, _ int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.refs = append(g.refs, ref)
	if g.image == "" {
		return generative.FallbackStatus
	}
	return g.image
}

type env struct {
	tg    *fakeTelegram
	bot   *tgbot.Bot
	deps  handlers.HandlerDeps
	gen   *fakeGenerator
	store *knowledge.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tg := newFakeTelegram(t)
	b, err := tgbot.New(testToken, tgbot.WithServerURL(tg.srv.URL))
	require.NoError(t, err)

	store := knowledge.NewStore(knowledge.NewMemoryBackend(), nil)
	seed, err := knowledge.LoadSeed()
	require.NoError(t, err)
	_, err = store.ApplySeed(context.Background(), seed)
	require.NoError(t, err)

	gen := &fakeGenerator{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: testToken, AdminUserID: testAdmin},
		Messages: config.DefaultMessages,
	}
	deps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Engine:   engine.New(store, gen, nil, log),
		Sessions: conversation.NewManager(conversation.NewMemoryStore(time.Hour), log),
	}
	return &env{tg: tg, bot: b, deps: deps, gen: gen, store: store}
}

func (e *env) state(t *testing.T, userID int64) *conversation.Session {
	t.Helper()
	var out conversation.Session
	err := e.deps.Sessions.Do(context.Background(), userID, func(_ context.Context, s *conversation.Session) error {
		out = *s
		return nil
	})
	require.NoError(t, err)
	return &out
}

func user(id int64) *models.User {
	return &models.User{ID: id, FirstName: "Аня", Username: "anya"}
}

func textUpdate(from int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			From: user(from),
			Chat: models.Chat{ID: testChatID},
			Text: text,
		},
	}
}

func photoUpdate(from int64) *models.Update {
	return &models.Update{
		ID: 2,
		Message: &models.Message{
			ID:   11,
			From: user(from),
			Chat: models.Chat{ID: testChatID},
			Photo: []models.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "big", Width: 1280, Height: 960},
				{FileID: "mid", Width: 320, Height: 240},
			},
		},
	}
}

func callbackUpdate(from int64, data string) *models.Update {
	return &models.Update{
		ID: 3,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: *user(from),
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{
					ID:   55,
					Chat: models.Chat{ID: testChatID},
				},
			},
			Data: data,
		},
	}
}
