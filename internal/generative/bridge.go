// Package generative calls a chat-completion model and turns every failure
// into a fixed, user-presentable fallback text.
package generative

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/edgard/plexybot/internal/config"
)

// Fallback texts returned instead of errors.
const (
	FallbackStatus      = "Произошла ошибка при обращении к AI. Попробуйте позже."
	FallbackMalformed   = "Получен неожиданный ответ от AI. Попробуйте позже."
	FallbackUnavailable = "Произошла ошибка при обращении к AI сервису. Попробуйте позже."
	FallbackMissingKey  = "Ошибка: API ключ не настроен. Обратитесь к администратору."
)

const (
	minVisionTemperature = 0.2
	maxVisionTemperature = 0.7
)

// Bridge wraps a Backend with retries, pacing and fallbacks.
type Bridge struct {
	backend     Backend
	model       string
	visionModel string
	hasKey      bool

	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	visionTemp  float32

	inlineImages  bool
	maxImageBytes int64
	httpClient    *http.Client

	limiter *rate.Limiter
	flight  singleflight.Group
	timer   Timer
	log     *slog.Logger
}

// Option customizes a Bridge.
type Option func(*Bridge)

// Timer waits out backoff delays.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

// WithTimer replaces the backoff timer, mainly for tests.
func WithTimer(t Timer) Option {
	return func(b *Bridge) { b.timer = t }
}

// WithHTTPClient sets the client used to fetch images.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bridge) { b.httpClient = c }
}

// NewBridge builds a Bridge over backend.
func NewBridge(cfg config.AIConfig, backend Backend, log *slog.Logger, opts ...Option) *Bridge {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	b := &Bridge{
		backend:       backend,
		model:         cfg.Model,
		visionModel:   cfg.VisionModel,
		hasKey:        cfg.APIKey != "",
		timeout:       cfg.Timeout,
		maxAttempts:   max(cfg.MaxAttempts, 1),
		baseDelay:     cfg.BaseDelay,
		maxDelay:      cfg.MaxDelay,
		visionTemp:    min(max(cfg.VisionTemperature, minVisionTemperature), maxVisionTemperature),
		inlineImages:  cfg.InlineImages,
		maxImageBytes: cfg.MaxImageBytes,
		httpClient:    http.DefaultClient,
		limiter:       rate.NewLimiter(limit, max(cfg.Burst, 1)),
		log:           log.With("component", "generative_bridge"),
	}
	if b.visionModel == "" {
		b.visionModel = b.model
	}
	if b.maxImageBytes <= 0 {
		b.maxImageBytes = defaultMaxImageBytes
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Complete sends prompt as a single user message and returns the model's
// text, or one of the fallback texts. Identical concurrent prompts share one
// call, which outlives any single caller's cancellation.
func (b *Bridge) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) string {
	req := Request{Model: b.model, Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature}
	key := req.Model + "\x00" + strconv.Itoa(maxTokens) + "\x00" + strconv.FormatFloat(float64(temperature), 'f', 2, 32) + "\x00" + prompt
	ch := b.flight.DoChan(key, func() (any, error) {
		return b.call(context.WithoutCancel(ctx), req), nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			b.log.DebugContext(ctx, "Shared in-flight completion", "prompt_len", len(prompt))
		}
		return res.Val.(string)
	case <-ctx.Done():
		b.log.WarnContext(ctx, "Completion abandoned by caller", "error", ctx.Err())
		return FallbackUnavailable
	}
}

// CompleteWithImage attaches the image to the prompt. The configured vision
// temperature is used.
func (b *Bridge) CompleteWithImage(ctx context.Context, prompt string, img ImageRef, maxTokens int) string {
	if !b.hasKey {
		return FallbackMissingKey
	}
	if img.URL == "" && len(img.Data) == 0 {
		b.log.ErrorContext(ctx, "Image request without image")
		return FallbackUnavailable
	}
	if len(img.Data) == 0 && (img.Private || b.wantsImageData()) {
		data, mimeType, err := fetchImage(ctx, b.httpClient, img.URL, b.maxImageBytes)
		if err != nil {
			b.log.ErrorContext(ctx, "Failed to fetch image", "error", err)
			return FallbackUnavailable
		}
		img.Data, img.MIMEType = data, mimeType
	}
	if img.Private {
		img.URL = ""
	}
	return b.call(ctx, Request{
		Model:       b.visionModel,
		Prompt:      prompt,
		Image:       &img,
		MaxTokens:   maxTokens,
		Temperature: b.visionTemp,
	})
}

// IsFallback reports whether text is one of the fallback texts.
func IsFallback(text string) bool {
	switch text {
	case FallbackStatus, FallbackMalformed, FallbackUnavailable, FallbackMissingKey:
		return true
	}
	return false
}

func (b *Bridge) wantsImageData() bool {
	if bb, ok := b.backend.(byteImageBackend); ok && bb.NeedsImageData() {
		return true
	}
	return b.inlineImages
}

func (b *Bridge) call(ctx context.Context, req Request) string {
	if !b.hasKey {
		return FallbackMissingKey
	}
	text, err := b.chatWithRetry(ctx, req)
	if err == nil {
		return text
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrMalformedResponse):
		b.log.ErrorContext(ctx, "Unexpected generative response", "error", err)
		return FallbackMalformed
	case errors.Is(err, ErrMissingAPIKey):
		return FallbackMissingKey
	case errors.As(err, &statusErr):
		b.log.ErrorContext(ctx, "Generative endpoint error", "status", statusErr.Code, "error", err)
		return FallbackStatus
	default:
		b.log.ErrorContext(ctx, "Generative call failed", "error", err)
		return FallbackUnavailable
	}
}

func (b *Bridge) chatWithRetry(ctx context.Context, req Request) (string, error) {
	var text string
	waits := 0
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(b.maxAttempts)),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrRateLimited) }),
		retry.DelayType(func(uint, error, *retry.Config) time.Duration {
			d := b.backoff(waits)
			waits++
			return d
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, _ error) {
			b.log.WarnContext(ctx, "Generative endpoint rate limited",
				"attempt", n+1, "max_attempts", b.maxAttempts)
		}),
	}
	if b.timer != nil {
		opts = append(opts, retry.WithTimer(b.timer))
	}

	err := retry.Do(func() error {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		var err error
		text, err = b.attempt(ctx, req)
		return err
	}, opts...)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (b *Bridge) attempt(ctx context.Context, req Request) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.backend.Chat(ctx, req)
}

// backoff returns base·2^wait capped at maxDelay.
func (b *Bridge) backoff(wait int) time.Duration {
	d := b.baseDelay << wait
	if b.maxDelay > 0 && (d > b.maxDelay || d < b.baseDelay) {
		d = b.maxDelay
	}
	return d
}
