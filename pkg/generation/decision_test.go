package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/one-million-why/why-engine/pkg/types"
)

func TestAdvance(t *testing.T) {
	assert.Equal(t, stateNextAttempt, advance(0, 3))
	assert.Equal(t, stateNextAttempt, advance(1, 3))
	assert.Equal(t, stateExhausted, advance(2, 3))
}

func TestDecide(t *testing.T) {
	valid := &types.ValidationOutcome{Valid: true, ConfidenceScore: 100}
	invalid := &types.ValidationOutcome{Valid: false, ConfidenceScore: 0, Issues: []string{"bad"}}

	tests := []struct {
		name string
		ev   evidence
		want error
	}{
		{"clean attempt", evidence{structure: valid, hallucination: valid}, nil},
		{"parse failure wins", evidence{parseErr: errors.New("bad json")}, errMalformedResponse},
		{"structure failure", evidence{structure: invalid}, errStructureInvalid},
		{"duplicate", evidence{structure: valid, duplicate: true}, errDuplicateQuestion},
		{
			"hallucination rejection below cutoff",
			evidence{structure: valid, hallucination: &types.ValidationOutcome{Valid: false, ConfidenceScore: 40}},
			errLowConfidence,
		},
		{
			"invalid verdict at high confidence is accepted",
			evidence{structure: valid, hallucination: &types.ValidationOutcome{Valid: false, ConfidenceScore: 80}},
			nil,
		},
		{
			"valid verdict at low confidence is accepted",
			evidence{structure: valid, hallucination: &types.ValidationOutcome{Valid: true, ConfidenceScore: 10}},
			nil,
		},
		{
			"fail-closed verdict is a failed attempt",
			evidence{structure: valid, hallucination: &types.ValidationOutcome{Valid: false, ConfidenceScore: 0}},
			errLowConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decide(tt.ev, 70)
			if tt.want == nil {
				assert.NoError(t, got)
			} else {
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "why do cats purr", "why do cats purr", 1.0},
		{"disjoint", "why do cats purr", "where is the dog", 0.0},
		{"half common against longer", "why do cats purr", "why do cats purr loudly at night", 4.0 / 7.0},
		{"empty side", "", "why do cats purr", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, wordOverlap(tt.a, tt.b), 1e-9)
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	history := []string{"Why do cats purr when they're happy?"}

	t.Run("exact match ignoring case and whitespace", func(t *testing.T) {
		assert.True(t, isDuplicate("  why do cats purr when they're happy?  ", history, 0.80))
	})

	t.Run("high overlap is a duplicate", func(t *testing.T) {
		assert.True(t, isDuplicate("Why do cats purr when they're very happy?", history, 0.80))
	})

	t.Run("low overlap is not", func(t *testing.T) {
		assert.False(t, isDuplicate("Why do plants grow towards light?", history, 0.80))
	})

	t.Run("empty history never matches", func(t *testing.T) {
		assert.False(t, isDuplicate("Why do cats purr?", nil, 0.80))
	})
}
