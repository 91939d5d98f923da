// Package apiserver exposes the question and answer pipelines over HTTP.
// Handlers are thin transport bindings: request validation, pipeline call,
// envelope encoding. No business logic lives here.
package apiserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/one-million-why/why-engine/pkg/cache"
	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/generation"
	"github.com/one-million-why/why-engine/pkg/history"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/tone"
)

// Server holds the HTTP surface state and dependencies.
type Server struct {
	questions *generation.QuestionPipeline
	answers   *generation.AnswerPipeline
	catalog   *tone.Catalog
	offline   *cache.OfflineCache
	histories *history.Store
}

// NewServer wires the HTTP surface over the pipelines.
func NewServer(questions *generation.QuestionPipeline, answers *generation.AnswerPipeline, catalog *tone.Catalog, offline *cache.OfflineCache, histories *history.Store) *Server {
	return &Server{
		questions: questions,
		answers:   answers,
		catalog:   catalog,
		offline:   offline,
		histories: histories,
	}
}

// Start builds the HTTP server from cfg and serves until it fails.
func (s *Server) Start(cfg *config.EngineConfig) error {
	mux := s.setupRoutes()
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	logging.Infof("why-engine API server listening on port %d", cfg.Server.Port)
	return server.ListenAndServe()
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleOverview)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Generation endpoints
	mux.HandleFunc("POST /api/generate-question", s.handleGenerateQuestion)
	mux.HandleFunc("POST /api/generate-answer", s.handleGenerateAnswer)
	mux.HandleFunc("POST /api/generate-multiple-answers", s.handleGenerateMultipleAnswers)

	// Catalog and user endpoints
	mux.HandleFunc("GET /api/wildcards", s.handleWildcards)
	mux.HandleFunc("GET /api/user/{id}/stats", s.handleUserStats)

	// Offline cache endpoints
	mux.HandleFunc("GET /api/offline/cache-stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/offline/clear-expired", s.handleClearExpired)

	return mux
}

// handleOverview describes the API surface.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "1 Million of Why - Question Generation API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"generate_question":         "POST /api/generate-question",
			"generate_answer":           "POST /api/generate-answer",
			"generate_multiple_answers": "POST /api/generate-multiple-answers",
			"wildcards":                 "GET /api/wildcards",
			"user_stats":                "GET /api/user/{id}/stats",
			"cache_stats":               "GET /api/offline/cache-stats",
			"clear_expired":             "POST /api/offline/clear-expired",
			"health":                    "GET /api/health",
			"metrics":                   "GET /metrics",
		},
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "why-engine"}`))
}

func (s *Server) parseJSONRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("failed to encode JSON response: %v", err)
	}
}

// writeSuccessResponse wraps data in the success envelope with timing
// metadata.
func (s *Server) writeSuccessResponse(w http.ResponseWriter, data interface{}, started time.Time) {
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"metadata": map[string]interface{}{
			"response_time_ms":     time.Since(started).Milliseconds(),
			"processing_timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorTitle, message string) {
	s.writeJSONResponse(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   errorTitle,
		"message": message,
	})
}
