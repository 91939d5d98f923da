// Package validation implements the three response validation phases:
// input safety, structural validation, and the hallucination check.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/observability/metrics"
	"github.com/one-million-why/why-engine/pkg/types"
)

const maxInputLength = 5000

// harmfulPatterns is a small denylist of harmful-content and
// script-injection markers checked on raw input.
var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(suicide|self-harm|violence|illegal)\b`),
	regexp.MustCompile(`(?i)\b(hate|discrimination|offensive)\b`),
	regexp.MustCompile(`(?i)<script|javascript:|data:`),
}

// Completer issues the secondary completion used by the hallucination check.
type Completer interface {
	GenerateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Validator runs the validation phases. The zero value is not usable; build
// one with NewValidator.
type Validator struct {
	completer Completer
}

// NewValidator returns a validator using completer for hallucination checks.
func NewValidator(completer Completer) *Validator {
	return &Validator{completer: completer}
}

// ValidateInputSafety rejects empty input, over-long input, and input
// matching the denylist. Pure, no network call.
func (v *Validator) ValidateInputSafety(input string) types.ValidationOutcome {
	var issues []string

	for _, p := range harmfulPatterns {
		if p.MatchString(input) {
			issues = append(issues, "Input contains potentially harmful or inappropriate content")
			break
		}
	}
	if len(input) > maxInputLength {
		issues = append(issues, fmt.Sprintf("Input too long (max %d characters)", maxInputLength))
	}
	if strings.TrimSpace(input) == "" {
		issues = append(issues, "Input cannot be empty")
	}

	return outcomeFromIssues(issues)
}

// ValidateQuestionStructure checks presence and type of all question fields,
// the "why" prefix, the complexity range, and category membership. Pure.
func (v *Validator) ValidateQuestionStructure(p *QuestionPayload) types.ValidationOutcome {
	var issues []string

	if p == nil {
		return types.ValidationOutcome{Valid: false, ConfidenceScore: 0, Issues: []string{"Missing question payload"}}
	}
	if p.Question == "" {
		issues = append(issues, "Missing or invalid question field")
	}
	if p.ComplexityScore == nil {
		issues = append(issues, "Missing or invalid complexity_score field")
	}
	if p.Category == nil || *p.Category == "" {
		issues = append(issues, "Missing or invalid category field")
	}
	if p.HookLine == nil || *p.HookLine == "" {
		issues = append(issues, "Missing or invalid hook_line field")
	}

	if p.Question != "" && !strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.Question)), "why") {
		issues = append(issues, `Question must start with "Why"`)
	}
	if p.ComplexityScore != nil && (*p.ComplexityScore < 1 || *p.ComplexityScore > 10) {
		issues = append(issues, "Complexity score must be between 1 and 10")
	}
	if p.Category != nil && *p.Category != "" && !types.IsValidCategory(strings.ToLower(*p.Category)) {
		issues = append(issues, fmt.Sprintf("Category must be one of: %s", joinCategories()))
	}

	return outcomeFromIssues(issues)
}

func joinCategories() string {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

const factCheckerSystemPrompt = "You are a scientific fact-checker focused on accuracy and logic."

// HallucinationCheck asks a fact-checking persona to judge the plausibility
// of an already-generated question. Any failure of the call or its parsing
// yields a conservative invalid verdict rather than an error: the check
// fails closed.
func (v *Validator) HallucinationCheck(ctx context.Context, q types.QuestionResult) types.ValidationOutcome {
	prompt := fmt.Sprintf(`
You are a fact-checker. Evaluate this question for scientific accuracy and logical coherence:

Question: %q
Category: %s
Complexity: %d

Respond with JSON:
{
  "is_valid": boolean,
  "confidence_score": 0-100,
  "issues": ["list of any factual or logical problems"]
}

Focus on:
1. Scientific accuracy of underlying assumptions
2. Logical coherence of the causal relationship
3. Appropriateness of complexity score
4. Category classification accuracy
`, q.Question, q.Category, q.ComplexityScore)

	text, err := v.completer.GenerateCompletion(ctx, factCheckerSystemPrompt, prompt)
	if err != nil {
		logging.Errorf("hallucination check failed: %v", err)
		metrics.HallucinationChecks.WithLabelValues("unavailable").Inc()
		return unavailableOutcome()
	}

	var verdict verdictPayload
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		logging.Errorf("hallucination check returned malformed verdict: %v", err)
		metrics.HallucinationChecks.WithLabelValues("unavailable").Inc()
		return unavailableOutcome()
	}

	confidence := 0
	if verdict.ConfidenceScore != nil {
		confidence = types.ClampScore(int(*verdict.ConfidenceScore), 0, 100)
	}
	if verdict.Valid {
		metrics.HallucinationChecks.WithLabelValues("accepted").Inc()
	} else {
		metrics.HallucinationChecks.WithLabelValues("rejected").Inc()
	}

	return types.ValidationOutcome{
		Valid:           verdict.Valid,
		ConfidenceScore: confidence,
		Issues:          verdict.Issues,
	}
}

func unavailableOutcome() types.ValidationOutcome {
	return types.ValidationOutcome{
		Valid:           false,
		ConfidenceScore: 0,
		Issues:          []string{"Validation service unavailable"},
	}
}

// Combine ANDs validity, averages confidence, and concatenates issues across
// independent validation outcomes.
func Combine(outcomes []types.ValidationOutcome) types.ValidationOutcome {
	if len(outcomes) == 0 {
		return types.ValidationOutcome{Valid: true, ConfidenceScore: 0}
	}

	combined := types.ValidationOutcome{Valid: true}
	sum := 0
	for _, o := range outcomes {
		combined.Valid = combined.Valid && o.Valid
		sum += o.ConfidenceScore
		combined.Issues = append(combined.Issues, o.Issues...)
	}
	combined.ConfidenceScore = (sum + len(outcomes)/2) / len(outcomes)
	return combined
}

func outcomeFromIssues(issues []string) types.ValidationOutcome {
	if len(issues) > 0 {
		return types.ValidationOutcome{Valid: false, ConfidenceScore: 0, Issues: issues}
	}
	return types.ValidationOutcome{Valid: true, ConfidenceScore: 100}
}
