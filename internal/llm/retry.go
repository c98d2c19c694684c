package llm

import (
	"context"
	"log"
	"strings"
	"time"
)

// retryable HTTP status codes worth a second attempt.
var retryableCodes = []string{"429", "500", "502", "503", "504"}

// retryClient wraps a Client with bounded exponential backoff on
// transient provider errors. Non-retryable errors surface immediately.
type retryClient struct {
	inner      Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// WithRetry wraps a client with up to maxRetries retries.
func WithRetry(inner Client, maxRetries int) Client {
	return &retryClient{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  2 * time.Second,
		maxDelay:   60 * time.Second,
	}
}

func (r *retryClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			return nil, err
		}

		delay := r.baseDelay << attempt
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
		log.Printf("llm: retry %d/%d after %s (%v)", attempt+1, r.maxRetries, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	msg := err.Error()
	for _, code := range retryableCodes {
		if strings.Contains(msg, "status "+code) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(msg), "timeout") ||
		strings.Contains(strings.ToLower(msg), "deadline exceeded")
}
