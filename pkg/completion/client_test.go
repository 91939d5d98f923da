package completion

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns its responses in order, then repeats the last one.
type scriptedProvider struct {
	responses []func() (string, error)
	calls     int
}

func (p *scriptedProvider) Complete(_ context.Context, _, _ string) (string, error) {
	i := p.calls
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	p.calls++
	return p.responses[i]()
}

func ok(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

// instrument swaps the client's sleeper for one that records delays without
// waiting.
func instrument(c *Client) *[]time.Duration {
	var delays []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return &delays
}

func TestGenerateCompletionSucceedsFirstTry(t *testing.T) {
	p := &scriptedProvider{responses: []func() (string, error){ok("hello")}}
	c := NewClient(p, 3, time.Second)
	instrument(c)

	text, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 1, p.calls)
}

func TestGenerateCompletionRetriesTransientErrors(t *testing.T) {
	p := &scriptedProvider{responses: []func() (string, error){
		fail(&ProviderError{StatusCode: http.StatusServiceUnavailable, Message: "overloaded"}),
		fail(&ProviderError{StatusCode: http.StatusBadGateway, Message: "bad gateway"}),
		ok("third time lucky"),
	}}
	c := NewClient(p, 3, time.Second)
	delays := instrument(c)

	text, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", text)
	assert.Equal(t, 3, p.calls)
	assert.Len(t, *delays, 2)
}

func TestGenerateCompletionNeverExceedsAttemptCeiling(t *testing.T) {
	p := &scriptedProvider{responses: []func() (string, error){
		fail(&ProviderError{StatusCode: http.StatusInternalServerError, Message: "boom"}),
	}}
	c := NewClient(p, 3, time.Second)
	instrument(c)

	_, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, 3, p.calls)
}

func TestGenerateCompletionFatalErrorSurfacesImmediately(t *testing.T) {
	fatal := &ProviderError{StatusCode: http.StatusUnauthorized, Message: "bad key"}
	p := &scriptedProvider{responses: []func() (string, error){fail(fatal)}}
	c := NewClient(p, 3, time.Second)
	delays := instrument(c)

	_, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, 1, p.calls)
	assert.Empty(t, *delays)
}

func TestGenerateCompletionRateLimitAlwaysSleeps(t *testing.T) {
	p := &scriptedProvider{responses: []func() (string, error){
		fail(&ProviderError{StatusCode: http.StatusTooManyRequests, Message: "slow down"}),
	}}
	c := NewClient(p, 3, time.Second)
	delays := instrument(c)

	_, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	// Rate limits sleep on every attempt, including the last.
	assert.Len(t, *delays, 3)
}

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	c := NewClient(&scriptedProvider{responses: []func() (string, error){ok("")}}, 3, time.Second)

	for attempt := 0; attempt < 3; attempt++ {
		base := time.Second * (1 << attempt)
		d := c.backoffDelay(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+time.Second)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
		retryable   bool
	}{
		{"429 status", &ProviderError{StatusCode: 429}, true, true},
		{"rate limit code", &ProviderError{StatusCode: 400, Code: "rate_limit_exceeded"}, true, false},
		{"timeout", &ProviderError{StatusCode: 408}, false, true},
		{"server error", &ProviderError{StatusCode: 500}, false, true},
		{"bad gateway", &ProviderError{StatusCode: 502}, false, true},
		{"unavailable", &ProviderError{StatusCode: 503}, false, true},
		{"gateway timeout", &ProviderError{StatusCode: 504}, false, true},
		{"unauthorized", &ProviderError{StatusCode: 401}, false, false},
		{"bad request", &ProviderError{StatusCode: 400}, false, false},
		{"plain error", errors.New("not a provider error"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rateLimited, IsRateLimited(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestGenerateCompletionHonorsContextDuringBackoff(t *testing.T) {
	p := &scriptedProvider{responses: []func() (string, error){
		fail(&ProviderError{StatusCode: http.StatusTooManyRequests}),
	}}
	c := NewClient(p, 3, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateCompletion(ctx, "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)
}

func TestProviderFuncAdapter(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, systemPrompt, userPrompt string) (string, error) {
		return systemPrompt + "|" + userPrompt, nil
	})
	c := NewClient(p, 3, time.Second)

	text, err := c.GenerateCompletion(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "sys|user", text)
}

func TestValidateResponse(t *testing.T) {
	c := NewClient(&scriptedProvider{responses: []func() (string, error){ok("")}}, 3, time.Second)

	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{
			"well formed",
			`{"question":"Why do cats purr?","complexity_score":5,"category":"biological","hook_line":"Listen closely."}`,
			true,
		},
		{"not json", "plain text", false},
		{
			"missing why prefix",
			`{"question":"How do cats purr?","complexity_score":5,"category":"biological","hook_line":"x"}`,
			false,
		},
		{
			"complexity out of range",
			`{"question":"Why do cats purr?","complexity_score":11,"category":"biological","hook_line":"x"}`,
			false,
		},
		{
			"missing hook line",
			`{"question":"Why do cats purr?","complexity_score":5,"category":"biological"}`,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, c.ValidateResponse(tt.text))
		})
	}
}
