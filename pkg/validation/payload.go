package validation

import (
	"encoding/json"
	"fmt"
)

// QuestionPayload is the JSON object shape expected from a question
// generation completion. Pointer fields distinguish absent from zero.
type QuestionPayload struct {
	Question        string   `json:"question"`
	ComplexityScore *float64 `json:"complexity_score"`
	Category        *string  `json:"category"`
	HookLine        *string  `json:"hook_line"`
}

// AnswerPayload is the JSON object shape expected from an answer completion.
type AnswerPayload struct {
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

// verdictPayload is the JSON object shape expected from a hallucination
// check completion.
type verdictPayload struct {
	Valid           bool     `json:"is_valid"`
	ConfidenceScore *float64 `json:"confidence_score"`
	Issues          []string `json:"issues"`
}

// ParseQuestionPayload decodes a question-shaped completion. Text that is
// not a JSON object of the expected shape is rejected.
func ParseQuestionPayload(text string) (*QuestionPayload, error) {
	var p QuestionPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("malformed question payload: %w", err)
	}
	return &p, nil
}

// ParseAnswerPayload decodes an answer-shaped completion.
func ParseAnswerPayload(text string) (*AnswerPayload, error) {
	var p AnswerPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("malformed answer payload: %w", err)
	}
	if p.Answer == "" {
		return nil, fmt.Errorf("malformed answer payload: missing answer field")
	}
	return &p, nil
}
