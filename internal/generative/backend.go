package generative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/edgard/plexybot/internal/config"
)

var (
	// ErrRateLimited is returned when the endpoint keeps answering 429.
	ErrRateLimited = errors.New("generative endpoint rate limited")
	// ErrMalformedResponse is returned when a 200 response has no usable content.
	ErrMalformedResponse = errors.New("malformed generative response")
	// ErrMissingAPIKey is returned by backends constructed without credentials.
	ErrMissingAPIKey = errors.New("generative API key is not configured")
)

// StatusError is a non-200 answer from the endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generative endpoint returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("generative endpoint returned HTTP %d: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrRateLimited) match a 429.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// ImageRef points at an image either by URL or by already fetched bytes.
type ImageRef struct {
	URL      string
	Data     []byte
	MIMEType string
	// Private marks a URL that carries credentials. It is always
	// downloaded and never sent to the model.
	Private bool
}

// Request is a single user-role message sent to a chat model.
type Request struct {
	Model       string
	Prompt      string
	Image       *ImageRef
	MaxTokens   int
	Temperature float32
}

// Backend performs one chat-completion call without retrying.
type Backend interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// byteImageBackend is implemented by backends that cannot follow image URLs.
type byteImageBackend interface {
	NeedsImageData() bool
}

// NewBackend builds the backend selected by cfg.Provider. Without an API key
// it returns a backend that fails every call, so the bot still starts and
// answers generative requests with FallbackMissingKey.
func NewBackend(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Backend, error) {
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case "gemini", "openai", "":
		default:
			return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
		}
		if log != nil {
			log.WarnContext(ctx, "AI API key is not configured; generative answers are disabled",
				"provider", cfg.Provider)
		}
		return missingKeyBackend{}, nil
	}
	switch cfg.Provider {
	case "gemini":
		return NewGeminiBackend(ctx, cfg, log)
	case "openai", "":
		return NewOpenAIBackend(cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

type missingKeyBackend struct{}

func (missingKeyBackend) Chat(context.Context, Request) (string, error) {
	return "", ErrMissingAPIKey
}
