// Package llm holds the language-model backends the planner talks to.
package llm

import (
	"context"
	"errors"
)

// Prompt line markers shared by the planner and the offline backend.
const (
	QuestionPrefix    = "Question: "
	KnownValuesPrefix = "Known values for "
)

var (
	ErrEmptyResponse = errors.New("empty response from language model")
	ErrMissingAPIKey = errors.New("language model API key is not configured")
)

// Backend is a single text-in, text-out completion call.
type Backend interface {
	GenerateStep(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

func (f BackendFunc) GenerateStep(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
