package ai

import (
	"context"
	"time"
)

// Retry runs fn with bounded retries and exponential backoff. Only
// retryable provider errors are retried; configuration and validation
// errors fail immediately. The last error is returned when retries are
// exhausted.
func Retry(ctx context.Context, cfg *RetryConfig, fn func(ctx context.Context) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * cfg.BackoffMultiplier)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsRetryableError(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// EmbedWithRetry embeds text through the given embedder with the retry
// policy applied.
func EmbedWithRetry(ctx context.Context, embedder Embedder, cfg *RetryConfig, text string) ([]float32, error) {
	var vector []float32
	err := Retry(ctx, cfg, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = embedder.Embed(ctx, text)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// CompleteWithRetry performs a completion request with the retry policy
// applied.
func CompleteWithRetry(ctx context.Context, completer Completer, cfg *RetryConfig, req *CompletionRequest) (*CompletionResponse, error) {
	var resp *CompletionResponse
	err := Retry(ctx, cfg, func(ctx context.Context) error {
		var completeErr error
		resp, completeErr = completer.Complete(ctx, req)
		return completeErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
