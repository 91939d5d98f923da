// Package cache implements the bounded, time-expiring offline cache that
// backs degraded-mode service.
package cache

import (
	"time"

	"github.com/one-million-why/why-engine/pkg/types"
)

// Store is the injectable persistence interface for cached questions and
// answers. Read paths never return expired entries.
type Store interface {
	// PutQuestion stores a cached question, evicting the oldest entries if
	// the capacity bound would be exceeded.
	PutQuestion(q types.CachedQuestion) error

	// PutAnswer stores a cached answer keyed by its own id, with a
	// back-reference to the question it answers.
	PutAnswer(a types.CachedAnswer) error

	// Questions returns all non-expired cached questions.
	Questions() ([]types.CachedQuestion, error)

	// AnswerFor performs a reverse lookup by question id. Returns nil when
	// no live answer references the question.
	AnswerFor(questionID string) (*types.CachedAnswer, error)

	// ClearExpired purges expired entries and reports how many were removed.
	ClearExpired() (int, error)

	// Stats reports collection sizes including entries already expired but
	// not yet purged.
	Stats() (Stats, error)

	// Close releases resources held by the store.
	Close() error
}

// Stats holds offline cache usage counts.
type Stats struct {
	Questions    int `json:"questions"`
	Answers      int `json:"answers"`
	ExpiredItems int `json:"expired_items"`
}

// RetentionPolicy is the bounded-size plus TTL policy shared by all store
// implementations. It is pure and independently testable.
type RetentionPolicy struct {
	MaxEntries int
	TTL        time.Duration
}

// Expired reports whether an entry cached at cachedAt is stale at now.
func (p RetentionPolicy) Expired(cachedAt, now time.Time) bool {
	if p.TTL <= 0 {
		return false
	}
	return cachedAt.Before(now.Add(-p.TTL))
}

// Overflow reports how many entries must be evicted from a collection of
// size n to respect the capacity bound.
func (p RetentionPolicy) Overflow(n int) int {
	if p.MaxEntries <= 0 || n <= p.MaxEntries {
		return 0
	}
	return n - p.MaxEntries
}
