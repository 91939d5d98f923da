// Package history tracks per-user question history and tone preferences for
// duplicate detection and stats. Lifetime is the process lifetime.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/one-million-why/why-engine/pkg/types"
)

// Entry is one user's history.
type Entry struct {
	UserID            string              `json:"user_id"`
	PreviousQuestions []string            `json:"previous_questions"`
	PreferredTones    []types.ToneVariant `json:"preferred_wildcards"`
	LastUpdated       time.Time           `json:"last_updated"`
}

// Stats summarizes a user's activity.
type Stats struct {
	TotalQuestions    int      `json:"totalQuestions"`
	FavoriteWildcards []string `json:"favoriteWildcards"`
	Categories        []string `json:"categories"`
}

// Store keeps bounded per-user histories, keyed by user id.
type Store struct {
	mu    sync.RWMutex
	users map[string]*Entry
	limit int
}

// NewStore builds a store keeping at most limit questions per user.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 50
	}
	return &Store{users: make(map[string]*Entry), limit: limit}
}

// Get returns a snapshot of the user's history, or nil for unknown users.
func (s *Store) Get(userID string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.users[userID]
	if !ok {
		return nil
	}
	cp := *e
	cp.PreviousQuestions = append([]string(nil), e.PreviousQuestions...)
	cp.PreferredTones = append([]types.ToneVariant(nil), e.PreferredTones...)
	return &cp
}

// Record appends a generated question and its tone to the user's history,
// evicting the oldest question beyond the limit and adding the tone to the
// preferred set if not already present.
func (s *Store) Record(userID, question string, applied types.ToneVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[userID]
	if !ok {
		s.users[userID] = &Entry{
			UserID:            userID,
			PreviousQuestions: []string{question},
			PreferredTones:    []types.ToneVariant{applied},
			LastUpdated:       time.Now(),
		}
		return
	}

	e.PreviousQuestions = append(e.PreviousQuestions, question)
	if n := len(e.PreviousQuestions); n > s.limit {
		e.PreviousQuestions = e.PreviousQuestions[n-s.limit:]
	}

	found := false
	for _, t := range e.PreferredTones {
		if t.Name == applied.Name {
			found = true
			break
		}
	}
	if !found {
		e.PreferredTones = append(e.PreferredTones, applied)
	}
	e.LastUpdated = time.Now()
}

// StatsFor computes activity stats for the user, or nil for unknown users.
func (s *Store) StatsFor(userID string) *Stats {
	e := s.Get(userID)
	if e == nil {
		return nil
	}

	counts := make(map[string]int)
	for _, t := range e.PreferredTones {
		counts[t.Name]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 3 {
		names = names[:3]
	}

	return &Stats{
		TotalQuestions:    len(e.PreviousQuestions),
		FavoriteWildcards: names,
		Categories:        []string{},
	}
}
