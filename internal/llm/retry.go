package llm

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const maxAttempts = 2

// TransientError marks a backend failure that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// retryableStatus reports whether an HTTP status from a model API means the
// same request may succeed later.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// IsTransient reports whether err is a network-class failure. Parse and
// content errors are not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}

// RetryingBackend bounds every call with a timeout and retries once on
// transient failures.
type RetryingBackend struct {
	next    Backend
	timeout time.Duration
	logger  *zap.Logger
}

func WithRetry(next Backend, timeout time.Duration, logger *zap.Logger) *RetryingBackend {
	return &RetryingBackend{
		next:    next,
		timeout: timeout,
		logger:  logger,
	}
}

func (b *RetryingBackend) GenerateStep(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := b.call(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) {
			return "", err
		}
		if attempt < maxAttempts {
			b.logger.Warn("Language model call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}
	return "", lastErr
}

func (b *RetryingBackend) call(ctx context.Context, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.next.GenerateStep(ctx, prompt)
}
