// Package generation orchestrates the question and answer pipelines over
// the completion client, validator, tone catalog, offline cache, and user
// history.
package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/one-million-why/why-engine/pkg/cache"
	"github.com/one-million-why/why-engine/pkg/completion"
	"github.com/one-million-why/why-engine/pkg/connectivity"
	"github.com/one-million-why/why-engine/pkg/history"
	"github.com/one-million-why/why-engine/pkg/imageproc"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/observability/metrics"
	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/types"
	"github.com/one-million-why/why-engine/pkg/validation"
)

// Completer issues one logical, internally retried completion call.
type Completer interface {
	GenerateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// QuestionRequest is one question generation request.
type QuestionRequest struct {
	Input       string
	Tone        string // empty selects a random tone
	UserID      string
	UserContext *types.UserContext
	InputType   types.InputType
}

// QuestionPipeline runs the bounded-retry generation loop.
type QuestionPipeline struct {
	completer Completer
	catalog   *tone.Catalog
	validator *validation.Validator
	images    *imageproc.Processor
	offline   *cache.OfflineCache
	histories *history.Store
	checker   connectivity.Checker

	maxAttempts         int
	similarityThreshold float64
	hallucinationCutoff int
}

// QuestionPipelineOptions carries the collaborators and tuning knobs.
type QuestionPipelineOptions struct {
	Completer Completer
	Catalog   *tone.Catalog
	Validator *validation.Validator
	Images    *imageproc.Processor
	Offline   *cache.OfflineCache
	Histories *history.Store
	Checker   connectivity.Checker

	MaxAttempts         int     // default 3
	SimilarityThreshold float64 // default 0.80
	HallucinationCutoff int     // default 70
}

// NewQuestionPipeline wires the pipeline. Zero-valued knobs take defaults.
func NewQuestionPipeline(opts QuestionPipelineOptions) *QuestionPipeline {
	p := &QuestionPipeline{
		completer:           opts.Completer,
		catalog:             opts.Catalog,
		validator:           opts.Validator,
		images:              opts.Images,
		offline:             opts.Offline,
		histories:           opts.Histories,
		checker:             opts.Checker,
		maxAttempts:         opts.MaxAttempts,
		similarityThreshold: opts.SimilarityThreshold,
		hallucinationCutoff: opts.HallucinationCutoff,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 3
	}
	if p.similarityThreshold <= 0 {
		p.similarityThreshold = 0.80
	}
	if p.hallucinationCutoff <= 0 {
		p.hallucinationCutoff = 70
	}
	if p.images == nil {
		p.images = imageproc.NewProcessor(nil)
	}
	if p.checker == nil {
		p.checker = connectivity.Static(true)
	}
	return p
}

// Generate turns the request input into a validated question, or serves the
// offline path when connectivity is unavailable.
func (p *QuestionPipeline) Generate(ctx context.Context, req QuestionRequest) (*types.QuestionResult, error) {
	if !p.checker.Online(ctx) {
		logging.Infof("offline, serving question from cache")
		return p.generateOffline(req)
	}

	input := req.Input
	if req.InputType == types.InputTypeImage {
		result, err := p.images.Process(ctx, input)
		if err != nil {
			return nil, err
		}
		input = imageproc.ConvertToInput(result)
		logging.Infof("image processed: method=%s confidence=%d result_length=%d",
			result.Method, result.ConfidenceScore, len(input))
	}

	if outcome := p.validator.ValidateInputSafety(input); !outcome.Valid {
		return nil, &UnsafeInputError{Issues: outcome.Issues}
	}

	var selected types.ToneVariant
	if req.Tone != "" {
		selected = p.catalog.ByName(req.Tone)
	} else {
		selected = p.catalog.Random()
	}
	archetype := p.catalog.RandomArchetype()
	if !p.catalog.Compatible(selected, string(archetype.Category)) {
		// Advisory only: selection is never gated on the compatibility table.
		logging.Debugf("tone %q flagged incompatible with category %q", selected.Name, archetype.Category)
	}

	var userHistory *history.Entry
	if req.UserID != "" {
		userHistory = p.histories.Get(req.UserID)
	}

	prompt := buildQuestionPrompt(p.catalog, input, selected, archetype, req.UserContext)

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		result, err := p.runAttempt(ctx, prompt, selected, userHistory, req.UserID)
		if err == nil {
			if req.UserID != "" {
				p.histories.Record(req.UserID, result.Question, selected)
			}
			p.offline.CacheResult(*result, nil)
			metrics.RecordAttempt("success")
			logging.Infof("question generated: category=%s complexity=%d tone=%s attempts=%d user=%s",
				result.Category, result.ComplexityScore, selected.Name, attempt+1, orAnonymous(req.UserID))
			return result, nil
		}

		var pe *completion.ProviderError
		if errors.As(err, &pe) && !completion.IsRetryable(err) && !completion.IsRateLimited(err) {
			// Non-retryable provider failures escape immediately.
			metrics.RecordAttempt("provider_error")
			return nil, err
		}

		lastErr = err
		metrics.RecordAttempt(attemptOutcomeLabel(err))
		logging.Warnf("question generation attempt %d/%d failed: %v", attempt+1, p.maxAttempts, err)

		if advance(attempt, p.maxAttempts) == stateExhausted {
			break
		}
	}

	metrics.RecordAttempt("exhausted")
	return nil, &AttemptsExhaustedError{Attempts: p.maxAttempts, LastErr: lastErr}
}

// runAttempt executes one generation attempt and evaluates its evidence.
func (p *QuestionPipeline) runAttempt(ctx context.Context, prompt string, selected types.ToneVariant, userHistory *history.Entry, userID string) (*types.QuestionResult, error) {
	text, err := p.completer.GenerateCompletion(ctx, tone.SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var ev evidence
	payload, parseErr := validation.ParseQuestionPayload(text)
	ev.parseErr = parseErr

	var candidate *types.QuestionResult
	if parseErr == nil {
		structure := p.validator.ValidateQuestionStructure(payload)
		ev.structure = &structure
		if !structure.Valid {
			logging.Warnf("structure validation failed: %v", structure.Issues)
		}

		if structure.Valid {
			if userHistory != nil {
				ev.duplicate = isDuplicate(payload.Question, userHistory.PreviousQuestions, p.similarityThreshold)
				if ev.duplicate {
					logging.Warnf("duplicate question detected, regenerating")
				}
			}

			if !ev.duplicate {
				candidate = assembleQuestion(payload, selected, userID)
				verdict := p.validator.HallucinationCheck(ctx, *candidate)
				ev.hallucination = &verdict
				if !verdict.Valid {
					logging.Warnf("hallucination check flagged question (confidence=%d): %v",
						verdict.ConfidenceScore, verdict.Issues)
				}
			}
		}
	}

	if rejection := decide(ev, p.hallucinationCutoff); rejection != nil {
		return nil, rejection
	}
	return candidate, nil
}

// assembleQuestion builds the surfaced result, clamping the complexity score
// and normalizing the category.
func assembleQuestion(payload *validation.QuestionPayload, selected types.ToneVariant, userID string) *types.QuestionResult {
	complexity := 0
	if payload.ComplexityScore != nil {
		complexity = int(*payload.ComplexityScore)
	}
	category := ""
	if payload.Category != nil {
		category = strings.ToLower(*payload.Category)
	}
	hook := ""
	if payload.HookLine != nil {
		hook = *payload.HookLine
	}

	return &types.QuestionResult{
		Question:        payload.Question,
		ComplexityScore: types.ClampScore(complexity, 1, 10),
		Category:        category,
		HookLine:        hook,
		ToneApplied:     selected,
		GeneratedAt:     time.Now(),
		UserID:          userID,
	}
}

// generateOffline serves the degraded path: a random cached question, or the
// rule-based generator when the cache is empty. The provider is never
// invoked.
func (p *QuestionPipeline) generateOffline(req QuestionRequest) (*types.QuestionResult, error) {
	cached, err := p.offline.RandomQuestion()
	if err != nil {
		logging.Warnf("offline cache read failed: %v", err)
	}
	if cached != nil {
		metrics.OfflineFallbacks.WithLabelValues("cached").Inc()
		return &types.QuestionResult{
			Question:        cached.Question,
			ComplexityScore: types.ClampScore(cached.ComplexityScore, 1, 10),
			Category:        cached.Category,
			HookLine:        "From your offline collection",
			ToneApplied:     cached.ToneApplied,
			GeneratedAt:     time.Now(),
		}, nil
	}

	applied := p.catalog.Random()
	if req.Tone != "" {
		applied = p.catalog.ByName(req.Tone)
	}
	result := p.offline.GenerateRuleBased(req.Input, applied)
	return &result, nil
}

// attemptOutcomeLabel maps internal failure signals to metric labels.
func attemptOutcomeLabel(err error) string {
	switch {
	case errors.Is(err, errMalformedResponse):
		return "parse_error"
	case errors.Is(err, errStructureInvalid):
		return "structure_invalid"
	case errors.Is(err, errDuplicateQuestion):
		return "duplicate"
	case errors.Is(err, errLowConfidence):
		return "hallucination"
	default:
		return "provider_error"
	}
}

func orAnonymous(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}
