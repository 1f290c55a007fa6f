package generative_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/generative"
)

type capturedRequest struct {
	Header http.Header
	Body   struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
}

type fakeCompletions struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []capturedRequest
}

func (f *fakeCompletions) captured() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var c capturedRequest
	c.Header = r.Header.Clone()
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &c.Body)

	f.mu.Lock()
	f.requests = append(f.requests, c)
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const okBody = `{"id":"1","object":"chat.completion","model":"test-model",
"choices":[{"index":0,"message":{"role":"assistant","content":"PLEXY: Привет"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`

func newOpenAIBackend(t *testing.T, f *fakeCompletions) generative.Backend {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.BaseURL = srv.URL + "/v1/"
	cfg.Referer = "https://t.me/plexy_bot"
	cfg.Title = "PLEXY Plant & Vitamin Bot"
	backend, err := generative.NewOpenAIBackend(cfg, discardLogger())
	require.NoError(t, err)
	return backend
}

func TestOpenAIBackend_Text(t *testing.T) {
	t.Parallel()

	f := &fakeCompletions{status: http.StatusOK, body: okBody}
	backend := newOpenAIBackend(t, f)

	got, err := backend.Chat(context.Background(), generative.Request{
		Model: "test-model", Prompt: "Привет", MaxTokens: 800, Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "PLEXY: Привет", got)

	reqs := f.captured()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
	assert.Equal(t, "https://t.me/plexy_bot", req.Header.Get("HTTP-Referer"))
	assert.Equal(t, "PLEXY Plant & Vitamin Bot", req.Header.Get("X-Title"))
	assert.Equal(t, "test-model", req.Body.Model)
	assert.Equal(t, 800, req.Body.MaxTokens)
	require.Len(t, req.Body.Messages, 1)
	assert.Equal(t, "user", req.Body.Messages[0].Role)
	assert.JSONEq(t, `"Привет"`, string(req.Body.Messages[0].Content))
}

func TestOpenAIBackend_Image(t *testing.T) {
	t.Parallel()

	f := &fakeCompletions{status: http.StatusOK, body: okBody}
	backend := newOpenAIBackend(t, f)

	_, err := backend.Chat(context.Background(), generative.Request{
		Model:  "test-model",
		Prompt: "Что за растение?",
		Image:  &generative.ImageRef{Data: []byte("\x89PNG\r\n\x1a\nfake"), MIMEType: "image/png"},
	})
	require.NoError(t, err)
	reqs := f.captured()
	require.Len(t, reqs, 1)

	var parts []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body.Messages[0].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "Что за растение?", parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestOpenAIBackend_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit exceeded","type":"rate_limit_error","code":429}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, generative.ErrRateLimited)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `{"error":{"message":"upstream failed","type":"server_error"}}`,
			check: func(t *testing.T, err error) {
				var se *generative.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.Code)
			},
		},
		{
			name:   "missing choices",
			status: http.StatusOK,
			body:   `{"id":"1","object":"chat.completion","choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, generative.ErrMalformedResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newOpenAIBackend(t, &fakeCompletions{status: tt.status, body: tt.body})
			_, err := backend.Chat(context.Background(), generative.Request{Model: "m", Prompt: "p"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestBridge_OpenAIRateLimitEndToEnd(t *testing.T) {
	t.Parallel()

	f := &fakeCompletions{status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`}
	backend := newOpenAIBackend(t, f)
	rec := &timerRecorder{}
	b := generative.NewBridge(testConfig(), backend, nil, generative.WithTimer(rec))

	assert.Equal(t, generative.FallbackStatus, b.Complete(context.Background(), "q", 10, 0.7))
	assert.Len(t, f.captured(), 3)
	assert.Len(t, rec.delays, 2)
}

func TestNewOpenAIBackend_MissingKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.APIKey = ""
	_, err := generative.NewOpenAIBackend(cfg, discardLogger())
	assert.ErrorIs(t, err, generative.ErrMissingAPIKey)
}
