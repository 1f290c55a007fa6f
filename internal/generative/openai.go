package generative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/edgard/plexybot/internal/config"
)

type openAIBackend struct {
	client *openai.Client
	log    *slog.Logger
}

// NewOpenAIBackend talks to an OpenAI-compatible endpoint such as OpenRouter.
func NewOpenAIBackend(cfg config.AIConfig, log *slog.Logger) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	oaCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}
	return &openAIBackend{
		client: openai.NewClientWithConfig(oaCfg),
		log:    log.With("component", "openai_backend"),
	}, nil
}

func (o *openAIBackend) Chat(ctx context.Context, req Request) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Image != nil {
		msg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: req.Image.dataURL()}},
		}
	} else {
		msg.Content = req.Prompt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    []openai.ChatCompletionMessage{msg},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	o.log.DebugContext(ctx, "Chat completion received",
		"model", resp.Model, "finish_reason", resp.Choices[0].FinishReason, "total_tokens", resp.Usage.TotalTokens)
	return text, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Code: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("chat completion failed: %w", err)
}

// headerTransport adds the attribution headers OpenRouter expects.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if t.referer != "" {
		r.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		r.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(r)
}
