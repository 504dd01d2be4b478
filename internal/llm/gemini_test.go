package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func TestGeminiErrorMarksRetryableStatuses(t *testing.T) {
	cases := map[int]bool{
		400: false,
		401: false,
		403: false,
		404: false,
		429: true,
		500: true,
		503: true,
	}
	for code, transient := range cases {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			apiErr := genai.APIError{Code: code, Message: "boom"}
			err := geminiError(apiErr)

			assert.Equal(t, transient, IsTransient(err))
			var got genai.APIError
			require.True(t, errors.As(err, &got))
			assert.Equal(t, code, got.Code)
		})
	}

	assert.False(t, IsTransient(geminiError(errors.New("invalid argument"))))
}

func TestRetryRecoversFromGeminiUnavailable(t *testing.T) {
	calls := 0
	backend := BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", geminiError(genai.APIError{Code: 503, Status: "503 Service Unavailable"})
		}
		return `{"operation":"value"}`, nil
	})

	out, err := WithRetry(backend, time.Second, zap.NewNop()).GenerateStep(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"operation":"value"}`, out)
	assert.Equal(t, 2, calls)
}
