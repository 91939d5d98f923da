package apiserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/one-million-why/why-engine/pkg/completion"
	"github.com/one-million-why/why-engine/pkg/generation"
	"github.com/one-million-why/why-engine/pkg/imageproc"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/types"
)

const (
	maxQuestionInputLength = 5000
	maxAnswerInputLength   = 1000
	defaultAnswerCount     = 3
	maxAnswerCount         = 5
)

// GenerateQuestionRequest is the POST /api/generate-question body.
type GenerateQuestionRequest struct {
	Input       string             `json:"input"`
	Wildcard    string             `json:"wildcard,omitempty"`
	UserID      string             `json:"user_id,omitempty"`
	UserContext *types.UserContext `json:"user_context,omitempty"`
	Type        string             `json:"type,omitempty"`
}

// GenerateAnswerRequest is the POST /api/generate-answer body. Count is only
// read by the multiple-answers endpoint.
type GenerateAnswerRequest struct {
	Question   string `json:"question"`
	Wildcard   string `json:"wildcard,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Count      int    `json:"count,omitempty"`
}

func (s *Server) validateQuestionRequest(req *GenerateQuestionRequest) error {
	if req.Input == "" {
		return fmt.Errorf("input is required")
	}
	if len(req.Input) > maxQuestionInputLength {
		return fmt.Errorf("input must be at most %d characters", maxQuestionInputLength)
	}
	if req.Wildcard != "" && !s.catalog.IsKnown(req.Wildcard) {
		return fmt.Errorf("unknown wildcard: %q", req.Wildcard)
	}
	switch types.InputType(req.Type) {
	case "", types.InputTypeText, types.InputTypeImage, types.InputTypeSentence:
	default:
		return fmt.Errorf("unknown input type: %q", req.Type)
	}
	return nil
}

func (s *Server) validateAnswerRequest(req *GenerateAnswerRequest) error {
	if req.Question == "" {
		return fmt.Errorf("question is required")
	}
	if len(req.Question) > maxAnswerInputLength {
		return fmt.Errorf("question must be at most %d characters", maxAnswerInputLength)
	}
	if req.Wildcard != "" && !s.catalog.IsKnown(req.Wildcard) {
		return fmt.Errorf("unknown wildcard: %q", req.Wildcard)
	}
	return nil
}

// handleGenerateQuestion handles POST /api/generate-question.
func (s *Server) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req GenerateQuestionRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := s.validateQuestionRequest(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	inputType := types.InputType(req.Type)
	if inputType == "" {
		inputType = types.InputTypeText
	}

	result, err := s.questions.Generate(r.Context(), generation.QuestionRequest{
		Input:       req.Input,
		Tone:        req.Wildcard,
		UserID:      req.UserID,
		UserContext: req.UserContext,
		InputType:   inputType,
	})
	if err != nil {
		s.writeQuestionError(w, err)
		return
	}

	s.writeSuccessResponse(w, result, started)
}

// writeQuestionError maps pipeline failures to HTTP statuses. Caller faults
// are 400s; everything else is a 500 with the underlying message.
func (s *Server) writeQuestionError(w http.ResponseWriter, err error) {
	logging.Errorf("question generation failed: %v", err)

	var unsafeErr *generation.UnsafeInputError
	switch {
	case errors.As(err, &unsafeErr):
		s.writeErrorResponse(w, http.StatusBadRequest, "Question generation failed", unsafeErr.Error())
	case errors.Is(err, imageproc.ErrInvalidImageFormat):
		s.writeErrorResponse(w, http.StatusBadRequest, "Question generation failed", err.Error())
	default:
		var providerErr *completion.ProviderError
		if errors.As(err, &providerErr) {
			s.writeErrorResponse(w, http.StatusBadGateway, "Question generation failed", providerErr.Error())
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "Question generation failed", err.Error())
	}
}

// handleGenerateAnswer handles POST /api/generate-answer.
func (s *Server) handleGenerateAnswer(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req GenerateAnswerRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := s.validateAnswerRequest(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := s.answers.Generate(r.Context(), generation.AnswerRequest{
		Question:   req.Question,
		Tone:       req.Wildcard,
		QuestionID: req.QuestionID,
	})
	if err != nil {
		logging.Errorf("answer generation failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Answer generation failed", err.Error())
		return
	}

	s.writeSuccessResponse(w, result, started)
}

// handleGenerateMultipleAnswers handles POST /api/generate-multiple-answers.
func (s *Server) handleGenerateMultipleAnswers(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req GenerateAnswerRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := s.validateAnswerRequest(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	count := req.Count
	if count == 0 {
		count = defaultAnswerCount
	}
	if count < 1 || count > maxAnswerCount {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("count must be between 1 and %d", maxAnswerCount))
		return
	}

	answers, err := s.answers.GenerateMultiple(r.Context(), req.Question, count)
	if err != nil {
		logging.Errorf("multiple answers generation failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Multiple answers generation failed", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    answers,
		"metadata": map[string]interface{}{
			"response_time_ms":     time.Since(started).Milliseconds(),
			"answers_generated":    len(answers),
			"processing_timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleWildcards handles GET /api/wildcards.
func (s *Server) handleWildcards(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    s.catalog.All(),
	})
}

// handleUserStats handles GET /api/user/{id}/stats.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	stats := s.histories.StatsFor(userID)
	if stats == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "User not found",
			fmt.Sprintf("no history for user %q", userID))
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// handleCacheStats handles GET /api/offline/cache-stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.offline.Store().Stats()
	if err != nil {
		logging.Errorf("cache stats failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Cache stats failed", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// handleClearExpired handles POST /api/offline/clear-expired.
func (s *Server) handleClearExpired(w http.ResponseWriter, r *http.Request) {
	removed, err := s.offline.Store().ClearExpired()
	if err != nil {
		logging.Errorf("clear expired failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "Clear expired failed", err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]int{"removed": removed},
	})
}
