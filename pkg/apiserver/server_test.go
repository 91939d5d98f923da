package apiserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-million-why/why-engine/pkg/cache"
	"github.com/one-million-why/why-engine/pkg/connectivity"
	"github.com/one-million-why/why-engine/pkg/generation"
	"github.com/one-million-why/why-engine/pkg/history"
	"github.com/one-million-why/why-engine/pkg/imageproc"
	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/validation"
)

// stubCompleter answers every completion shape the server can trigger,
// routing on the system prompt.
type stubCompleter struct{}

func (stubCompleter) GenerateCompletion(_ context.Context, systemPrompt, _ string) (string, error) {
	switch {
	case systemPrompt == tone.SystemPrompt:
		return `{"question":"Why do cats purr?","complexity_score":5,"category":"biological","hook_line":"Listen closely."}`, nil
	case strings.Contains(systemPrompt, "fact-checker"):
		return `{"is_valid":true,"confidence_score":95,"issues":[]}`, nil
	default:
		return `{"answer":"Because of laryngeal oscillations.","sources":["Feline Biology"],"confidence_score":90}`, nil
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *history.Store) {
	t.Helper()

	completer := stubCompleter{}
	catalog := tone.NewCatalogWithRand(rand.New(rand.NewSource(9)))
	store := cache.NewMemoryStore(cache.RetentionPolicy{MaxEntries: 100, TTL: 7 * 24 * time.Hour})
	offline := cache.NewOfflineCache(store, nil)
	histories := history.NewStore(50)

	questions := generation.NewQuestionPipeline(generation.QuestionPipelineOptions{
		Completer: completer,
		Catalog:   catalog,
		Validator: validation.NewValidator(completer),
		Images:    imageproc.NewProcessor(nil),
		Offline:   offline,
		Histories: histories,
		Checker:   connectivity.Static(true),
	})
	answers := generation.NewAnswerPipeline(completer, catalog)

	server := NewServer(questions, answers, catalog, offline, histories)
	return server.setupRoutes(), histories
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	rec, body := doJSON(t, mux, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestOverviewEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	rec, body := doJSON(t, mux, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "endpoints")
}

func TestWildcardsEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	rec, body := doJSON(t, mux, http.MethodGet, "/api/wildcards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 5)
}

func TestGenerateQuestionEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	t.Run("success", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/generate-question",
			`{"input":"cats purring in the sun","wildcard":"funny"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])

		data := body["data"].(map[string]interface{})
		assert.Regexp(t, `(?i)^why`, data["question"])
		wildcard := data["wildcard_applied"].(map[string]interface{})
		assert.Equal(t, "funny", wildcard["name"])
		assert.Contains(t, body, "metadata")
	})

	t.Run("missing input", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/generate-question", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("unknown wildcard", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-question",
			`{"input":"cats","wildcard":"sarcastic"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("over-long input", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-question",
			`{"input":"`+strings.Repeat("a", 5001)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsafe input", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/generate-question",
			`{"input":"glorify violence"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-question", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateAnswerEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	t.Run("success", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/generate-answer",
			`{"question":"Why do cats purr?","wildcard":"scientific","question_id":"q-1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Because of laryngeal oscillations.", data["answer"])
		assert.Equal(t, "q-1", data["question_id"])
	})

	t.Run("missing question", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-answer", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("over-long question", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-answer",
			`{"question":"`+strings.Repeat("w", 1001)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateMultipleAnswersEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	t.Run("defaults to three answers", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/generate-multiple-answers",
			`{"question":"Why do cats purr?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := body["data"].([]interface{})
		assert.Len(t, data, 3)
		metadata := body["metadata"].(map[string]interface{})
		assert.Equal(t, float64(3), metadata["answers_generated"])
	})

	t.Run("honors explicit count", func(t *testing.T) {
		_, body := doJSON(t, mux, http.MethodPost, "/api/generate-multiple-answers",
			`{"question":"Why do cats purr?","count":2}`)
		data := body["data"].([]interface{})
		assert.Len(t, data, 2)
	})

	t.Run("rejects out-of-range count", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodPost, "/api/generate-multiple-answers",
			`{"question":"Why do cats purr?","count":9}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserStatsEndpoint(t *testing.T) {
	mux, histories := newTestMux(t)

	t.Run("unknown user is a 404", func(t *testing.T) {
		rec, _ := doJSON(t, mux, http.MethodGet, "/api/user/nobody/stats", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("known user", func(t *testing.T) {
		histories.Record("u1", "Why do cats purr?", tone.NewCatalog().All()[0])

		rec, body := doJSON(t, mux, http.MethodGet, "/api/user/u1/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)

		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["totalQuestions"])
	})
}

func TestOfflineEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)

	t.Run("cache stats", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodGet, "/api/offline/cache-stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["data"].(map[string]interface{}), "questions")
	})

	t.Run("clear expired", func(t *testing.T) {
		rec, body := doJSON(t, mux, http.MethodPost, "/api/offline/clear-expired", "")
		require.Equal(t, http.StatusOK, rec.Code)

		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(0), data["removed"])
	})
}
