package cache

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/observability/metrics"
	"github.com/one-million-why/why-engine/pkg/types"
)

// OfflineCache layers the offline-mode operations over a Store: caching
// freshly generated results, serving random cached questions, and the
// rule-based question generator used when the cache is empty.
type OfflineCache struct {
	store Store
	rng   *rand.Rand
}

// NewOfflineCache wraps store. A nil rng uses the shared math/rand source.
func NewOfflineCache(store Store, rng *rand.Rand) *OfflineCache {
	return &OfflineCache{store: store, rng: rng}
}

func (c *OfflineCache) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}

// Store exposes the underlying store for stats and purge operations.
func (c *OfflineCache) Store() Store { return c.store }

// CacheResult records a generated question, and optionally its answer, for
// offline reuse. Storage failures are logged, not surfaced: cache population
// is best effort.
func (c *OfflineCache) CacheResult(q types.QuestionResult, a *types.AnswerResult) {
	questionID := "cached-" + uuid.NewString()
	cq := types.CachedQuestion{
		ID:              questionID,
		Question:        q.Question,
		Category:        q.Category,
		ComplexityScore: q.ComplexityScore,
		ToneApplied:     q.ToneApplied,
		CachedAt:        time.Now(),
	}
	if err := c.store.PutQuestion(cq); err != nil {
		logging.Warnf("failed to cache question: %v", err)
		return
	}

	if a != nil {
		ca := types.CachedAnswer{
			ID:          "answer-" + uuid.NewString(),
			QuestionID:  questionID,
			Answer:      a.Answer,
			Sources:     a.Sources,
			ToneApplied: a.ToneApplied,
			CachedAt:    time.Now(),
		}
		if err := c.store.PutAnswer(ca); err != nil {
			logging.Warnf("failed to cache answer: %v", err)
		}
	}
}

// RandomQuestion returns a uniformly selected live cached question, or nil
// when the cache has nothing to serve.
func (c *OfflineCache) RandomQuestion() (*types.CachedQuestion, error) {
	live, err := c.store.Questions()
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, nil
	}
	q := live[c.intn(len(live))]
	return &q, nil
}

// AnswerFor resolves the cached answer referencing questionID.
func (c *OfflineCache) AnswerFor(questionID string) (*types.CachedAnswer, error) {
	return c.store.AnswerFor(questionID)
}

// offlinePattern maps an input keyword class to a canned question and its
// category.
type offlinePattern struct {
	re       *regexp.Regexp
	question string
	category string
}

var offlinePatterns = []offlinePattern{
	{regexp.MustCompile(`(?i)cat|feline|pet`), "Why do cats exhibit this behavior?", string(types.CategoryBiological)},
	{regexp.MustCompile(`(?i)plant|flower|tree`), "Why do plants develop this characteristic?", string(types.CategoryBiological)},
	{regexp.MustCompile(`(?i)human|people|person`), "Why do humans experience this phenomenon?", string(types.CategoryPsychological)},
	{regexp.MustCompile(`(?i)water|ocean|sea`), "Why does water behave this way?", string(types.CategoryPhysical)},
	{regexp.MustCompile(`(?i)sky|cloud|weather`), "Why do we observe this in the atmosphere?", string(types.CategoryPhysical)},
}

// GenerateRuleBased produces a question from simple keyword matching,
// without any provider call. The fallback of the fallback: used offline when
// the cache is empty.
func (c *OfflineCache) GenerateRuleBased(input string, applied types.ToneVariant) types.QuestionResult {
	question := "Why does this phenomenon occur?"
	category := "general"
	for _, p := range offlinePatterns {
		if p.re.MatchString(input) {
			question = p.question
			category = p.category
			break
		}
	}

	metrics.OfflineFallbacks.WithLabelValues("rule_based").Inc()
	return types.QuestionResult{
		Question:        question,
		ComplexityScore: c.intn(5) + 4,
		Category:        category,
		HookLine:        "An intriguing question to spark your curiosity",
		ToneApplied:     applied,
		GeneratedAt:     time.Now(),
	}
}

// Seed loads the pre-authored popular Q&A pairs so a cold start never has an
// empty cache.
func (c *OfflineCache) Seed() error {
	for _, s := range popularSeeds {
		if err := c.store.PutQuestion(s.question); err != nil {
			return fmt.Errorf("failed to seed question %s: %w", s.question.ID, err)
		}
		if s.answer != nil {
			if err := c.store.PutAnswer(*s.answer); err != nil {
				return fmt.Errorf("failed to seed answer for %s: %w", s.question.ID, err)
			}
		}
	}
	logging.Infof("offline cache seeded with %d popular questions", len(popularSeeds))
	return nil
}
