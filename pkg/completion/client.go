// Package completion implements the retrying completion client over a
// pluggable provider.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/observability/metrics"
)

const jitterCeilingMS = 1000

// Client wraps a Provider with bounded retries, exponential backoff with
// jitter, and error classification.
type Client struct {
	provider    Provider
	maxAttempts int
	baseDelay   time.Duration

	// sleep is swappable so tests can observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a client around provider. maxAttempts and baseDelay fall
// back to 3 attempts and 1s when non-positive.
func NewClient(provider Provider, maxAttempts int, baseDelay time.Duration) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &Client{
		provider:    provider,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDelay computes base * 2^attempt plus up to 1s of uniform jitter.
func (c *Client) backoffDelay(attempt int) time.Duration {
	exp := c.baseDelay * (1 << attempt)
	jitter := time.Duration(rand.Int63n(jitterCeilingMS)) * time.Millisecond
	return exp + jitter
}

// GenerateCompletion issues one logical completion, retrying rate-limited
// and transient provider failures up to the attempt ceiling. Non-retryable
// errors surface immediately; once attempts are exhausted the last error is
// surfaced wrapped in ErrAttemptsExhausted.
func (c *Client) GenerateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		start := time.Now()
		text, err := c.provider.Complete(ctx, systemPrompt, userPrompt)
		metrics.CompletionLatency.Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.CompletionRequests.WithLabelValues("ok").Inc()
			return text, nil
		}
		lastErr = err

		switch {
		case IsRateLimited(err):
			metrics.CompletionRequests.WithLabelValues("rate_limited").Inc()
			metrics.CompletionRetries.WithLabelValues("rate_limit").Inc()
			delay := c.backoffDelay(attempt)
			logging.Warnf("rate limit hit, retrying in %v (attempt %d/%d)", delay, attempt+1, c.maxAttempts)
			if serr := c.sleep(ctx, delay); serr != nil {
				return "", serr
			}
			continue
		case IsRetryable(err):
			metrics.CompletionRequests.WithLabelValues("transient_error").Inc()
			if attempt < c.maxAttempts-1 {
				metrics.CompletionRetries.WithLabelValues("transient").Inc()
				delay := c.backoffDelay(attempt)
				logging.Warnf("transient provider error: %v, retrying in %v (attempt %d/%d)", err, delay, attempt+1, c.maxAttempts)
				if serr := c.sleep(ctx, delay); serr != nil {
					return "", serr
				}
			}
			continue
		default:
			metrics.CompletionRequests.WithLabelValues("fatal_error").Inc()
			return "", err
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrAttemptsExhausted, c.maxAttempts, lastErr)
}

// questionShape mirrors the JSON object the question prompt asks for.
type questionShape struct {
	Question        string   `json:"question"`
	ComplexityScore *float64 `json:"complexity_score"`
	Category        *string  `json:"category"`
	HookLine        *string  `json:"hook_line"`
}

// ValidateResponse is a best-effort shape check on a question-shaped
// completion: valid JSON, a "why"-prefixed question, complexity in [1,10],
// and category and hook line present as strings.
func (c *Client) ValidateResponse(text string) bool {
	var parsed questionShape
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return false
	}
	if !strings.HasPrefix(strings.ToLower(parsed.Question), "why") {
		return false
	}
	if parsed.ComplexityScore == nil || *parsed.ComplexityScore < 1 || *parsed.ComplexityScore > 10 {
		return false
	}
	return parsed.Category != nil && parsed.HookLine != nil
}
