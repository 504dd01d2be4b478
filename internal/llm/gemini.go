package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"argos-engine/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiBackend(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	logger.Info("Using Gemini backend", zap.String("model", model))
	return &GeminiBackend{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (b *GeminiBackend) GenerateStep(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", geminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// geminiError wraps a GenerateContent failure, marking rate limits and server
// errors as transient.
func geminiError(err error) error {
	wrapped := fmt.Errorf("failed to generate content: %w", err)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && retryableStatus(apiErr.Code) {
		return &TransientError{Err: wrapped}
	}
	return wrapped
}
