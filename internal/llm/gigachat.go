package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"argos-engine/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// gigago reports non-200 replies only as text, e.g. "unexpected status 503: ...".
var gigaChatStatusPattern = regexp.MustCompile(`status (\d{3})\b`)

const gigaChatSystemInstruction = `You translate questions about a personal transaction ledger into a JSON query plan.
Answer with exactly one JSON object and nothing else.`

type GigaChatBackend struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatBackend(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = gigaChatSystemInstruction
	model.Temperature = 0

	logger.Info("Using GigaChat backend")
	return &GigaChatBackend{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (b *GigaChatBackend) GenerateStep(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := b.model.Generate(ctx, messages)
	if err != nil {
		return "", gigaChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// gigaChatError wraps a Generate failure, marking rate limits and server
// errors as transient.
func gigaChatError(err error) error {
	wrapped := fmt.Errorf("failed to generate response: %w", err)

	if m := gigaChatStatusPattern.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil && retryableStatus(code) {
			return &TransientError{Err: wrapped}
		}
	}
	return wrapped
}

func (b *GigaChatBackend) Close() error {
	if b.client != nil {
		b.client.Close()
	}
	return nil
}
