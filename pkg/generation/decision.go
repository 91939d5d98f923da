package generation

import (
	"strings"

	"github.com/one-million-why/why-engine/pkg/types"
)

// attemptState is the generation loop state after an attempt resolves.
type attemptState int

const (
	stateNextAttempt attemptState = iota
	stateSuccess
	stateExhausted
)

// advance computes the state after a failed attempt n (0-based).
func advance(n, maxAttempts int) attemptState {
	if n+1 >= maxAttempts {
		return stateExhausted
	}
	return stateNextAttempt
}

// evidence carries the per-attempt check results the decision is made over.
// Stages not reached are left at their zero value / nil.
type evidence struct {
	parseErr      error
	structure     *types.ValidationOutcome
	duplicate     bool
	hallucination *types.ValidationOutcome
}

// decide is the pure acceptance function over one attempt's evidence.
// It evaluates the stages in pipeline order and returns the internal reject
// signal of the first failing stage, or nil when the candidate is accepted.
//
// A hallucination verdict fails the attempt only when it is invalid AND its
// confidence is below cutoff: a low-confidence valid result is accepted.
func decide(ev evidence, cutoff int) error {
	if ev.parseErr != nil {
		return errMalformedResponse
	}
	if ev.structure != nil && !ev.structure.Valid {
		return errStructureInvalid
	}
	if ev.duplicate {
		return errDuplicateQuestion
	}
	if ev.hallucination != nil && !ev.hallucination.Valid && ev.hallucination.ConfidenceScore < cutoff {
		return errLowConfidence
	}
	return nil
}

// normalizeQuestion lowercases and trims for duplicate comparison.
func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// wordOverlap computes |common words| / max(|words1|, |words2|) over
// normalized question text.
func wordOverlap(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}
	common := 0
	for _, w := range wordsA {
		if setB[w] {
			common++
		}
	}

	longest := len(wordsA)
	if len(wordsB) > longest {
		longest = len(wordsB)
	}
	return float64(common) / float64(longest)
}

// isDuplicate reports whether candidate matches any previous question:
// exact normalized match, or word overlap above threshold.
func isDuplicate(candidate string, previous []string, threshold float64) bool {
	normalized := normalizeQuestion(candidate)
	for _, prev := range previous {
		prevNorm := normalizeQuestion(prev)
		if normalized == prevNorm || wordOverlap(normalized, prevNorm) > threshold {
			return true
		}
	}
	return false
}
