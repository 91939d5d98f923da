package completion

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is returned by providers and carries the HTTP-like status
// used for retry classification.
type ProviderError struct {
	StatusCode int
	Code       string // provider error code, e.g. "rate_limit_exceeded"
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err signals a provider rate limit.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.StatusCode == http.StatusTooManyRequests || pe.Code == "rate_limit_exceeded"
}

// retryableStatuses are transient provider failures worth another attempt.
var retryableStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryable reports whether err is a transient provider failure.
// Anything that is not a ProviderError with a retryable status is fatal.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return retryableStatuses[pe.StatusCode]
}

// ErrAttemptsExhausted wraps the last provider error once the retry budget
// is spent.
var ErrAttemptsExhausted = errors.New("completion attempts exhausted")
