package generative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/plexybot/internal/config"
)

type geminiBackend struct {
	client *genai.Client
	log    *slog.Logger
}

// NewGeminiBackend talks to the Gemini API.
func NewGeminiBackend(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	logger := log.With("component", "gemini_backend")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &geminiBackend{client: gi, log: logger}, nil
}

// NeedsImageData reports that images must be sent as bytes.
func (g *geminiBackend) NeedsImageData() bool { return true }

func (g *geminiBackend) Chat(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		if len(req.Image.Data) == 0 {
			return "", fmt.Errorf("gemini requires inline image data")
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		if code, msg, ok := geminiStatus(err); ok {
			return "", &StatusError{Code: code, Message: msg}
		}
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return g.extractText(ctx, resp)
}

func (g *geminiBackend) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		g.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("%w: blocked by safety filter: %s", ErrMalformedResponse, reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		g.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("%w: no content, finish reason %s", ErrMalformedResponse, finishReason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrMalformedResponse)
	}
	return text, nil
}

func geminiStatus(err error) (int, string, bool) {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code, apiErr.Message, true
	}
	return 0, "", false
}
