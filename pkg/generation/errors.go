package generation

import (
	"errors"
	"fmt"
	"strings"
)

// UnsafeInputError rejects input before any network call. User-correctable.
type UnsafeInputError struct {
	Issues []string
}

func (e *UnsafeInputError) Error() string {
	return "invalid input: " + strings.Join(e.Issues, ", ")
}

// AttemptsExhaustedError is the terminal failure of the generation loop,
// wrapping the last underlying cause.
type AttemptsExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *AttemptsExhaustedError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("failed to generate valid question after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("failed to generate valid question after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *AttemptsExhaustedError) Unwrap() error { return e.LastErr }

// Internal per-attempt failure signals. These drive the retry loop and are
// never surfaced to callers except as the LastErr of an exhaustion.
var (
	errMalformedResponse = errors.New("malformed provider response")
	errStructureInvalid  = errors.New("question structure invalid")
	errDuplicateQuestion = errors.New("duplicate question")
	errLowConfidence     = errors.New("hallucination check rejected question")
)
