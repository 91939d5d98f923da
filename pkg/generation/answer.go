package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/types"
	"github.com/one-million-why/why-engine/pkg/validation"
)

// defaultAnswerConfidence substitutes for a missing confidence_score field.
const defaultAnswerConfidence = 85

// AnswerRequest is one answer generation request.
type AnswerRequest struct {
	Question   string
	Tone       string // empty selects a random tone
	QuestionID string
}

// AnswerPipeline produces answers for "why" questions. Unlike the question
// pipeline it makes a single attempt: the completion client's internal
// retries are the only retry layer.
type AnswerPipeline struct {
	completer Completer
	catalog   *tone.Catalog
}

// NewAnswerPipeline wires the answer pipeline.
func NewAnswerPipeline(completer Completer, catalog *tone.Catalog) *AnswerPipeline {
	return &AnswerPipeline{completer: completer, catalog: catalog}
}

// Generate produces one answer for the requested question and tone.
func (p *AnswerPipeline) Generate(ctx context.Context, req AnswerRequest) (*types.AnswerResult, error) {
	var selected types.ToneVariant
	if req.Tone != "" {
		selected = p.catalog.ByName(req.Tone)
	} else {
		selected = p.catalog.Random()
	}
	return p.generateWith(ctx, req.Question, selected, req.QuestionID)
}

func (p *AnswerPipeline) generateWith(ctx context.Context, question string, selected types.ToneVariant, questionID string) (*types.AnswerResult, error) {
	text, err := p.completer.GenerateCompletion(ctx, answerSystemPrompt, buildAnswerPrompt(question, selected))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	payload, err := validation.ParseAnswerPayload(text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	confidence := defaultAnswerConfidence
	if payload.ConfidenceScore != nil {
		confidence = int(*payload.ConfidenceScore)
	}
	sources := payload.Sources
	if sources == nil {
		sources = []string{}
	}

	result := &types.AnswerResult{
		Answer:          payload.Answer,
		Sources:         sources,
		ConfidenceScore: types.ClampScore(confidence, 0, 100),
		ToneApplied:     selected,
		GeneratedAt:     time.Now(),
		QuestionID:      questionID,
	}

	logging.Infof("answer generated: question_length=%d answer_length=%d sources=%d confidence=%d tone=%s",
		len(question), len(result.Answer), len(result.Sources), result.ConfidenceScore, selected.Name)
	return result, nil
}

// GenerateMultiple produces up to count answers for one question, one per
// catalog tone in fixed order. Per-tone failures are logged and skipped, so
// the returned slice may be shorter than count.
func (p *AnswerPipeline) GenerateMultiple(ctx context.Context, question string, count int) ([]*types.AnswerResult, error) {
	tones := p.catalog.All()
	if count > len(tones) {
		count = len(tones)
	}

	answers := make([]*types.AnswerResult, 0, count)
	for i := 0; i < count; i++ {
		answer, err := p.generateWith(ctx, question, tones[i], "")
		if err != nil {
			logging.Errorf("failed to generate answer %d/%d: %v", i+1, count, err)
			continue
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
