package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/one-million-why/why-engine/pkg/observability/metrics"
	"github.com/one-million-why/why-engine/pkg/types"
)

// MemoryStore is the default in-process store. Both collections are bounded
// by the retention policy; on overflow only the newest entries are kept.
type MemoryStore struct {
	mu        sync.RWMutex
	questions []types.CachedQuestion
	answers   []types.CachedAnswer
	policy    RetentionPolicy
	now       func() time.Time
}

// NewMemoryStore builds an empty in-memory store under policy.
func NewMemoryStore(policy RetentionPolicy) *MemoryStore {
	return &MemoryStore{policy: policy, now: time.Now}
}

// NewMemoryStoreWithClock lets tests control the notion of "now".
func NewMemoryStoreWithClock(policy RetentionPolicy, now func() time.Time) *MemoryStore {
	return &MemoryStore{policy: policy, now: now}
}

func (s *MemoryStore) PutQuestion(q types.CachedQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
	s.questions = trimOldestQuestions(s.questions, s.policy)
	metrics.RecordCacheOp("add")
	return nil
}

func (s *MemoryStore) PutAnswer(a types.CachedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, a)
	s.answers = trimOldestAnswers(s.answers, s.policy)
	metrics.RecordCacheOp("add")
	return nil
}

func (s *MemoryStore) Questions() ([]types.CachedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var live []types.CachedQuestion
	for _, q := range s.questions {
		if !s.policy.Expired(q.CachedAt, now) {
			live = append(live, q)
		}
	}
	return live, nil
}

func (s *MemoryStore) AnswerFor(questionID string) (*types.CachedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	for i := range s.answers {
		a := s.answers[i]
		if a.QuestionID == questionID && !s.policy.Expired(a.CachedAt, now) {
			metrics.RecordCacheOp("hit")
			return &a, nil
		}
	}
	metrics.RecordCacheOp("miss")
	return nil, nil
}

func (s *MemoryStore) ClearExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	removed := 0
	liveQ := s.questions[:0]
	for _, q := range s.questions {
		if s.policy.Expired(q.CachedAt, now) {
			removed++
			continue
		}
		liveQ = append(liveQ, q)
	}
	s.questions = liveQ

	liveA := s.answers[:0]
	for _, a := range s.answers {
		if s.policy.Expired(a.CachedAt, now) {
			removed++
			continue
		}
		liveA = append(liveA, a)
	}
	s.answers = liveA

	for i := 0; i < removed; i++ {
		metrics.RecordCacheOp("expire")
	}
	return removed, nil
}

func (s *MemoryStore) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()

	expired := 0
	for _, q := range s.questions {
		if s.policy.Expired(q.CachedAt, now) {
			expired++
		}
	}
	for _, a := range s.answers {
		if s.policy.Expired(a.CachedAt, now) {
			expired++
		}
	}

	return Stats{
		Questions:    len(s.questions),
		Answers:      len(s.answers),
		ExpiredItems: expired,
	}, nil
}

func (s *MemoryStore) Close() error { return nil }

// trimOldestQuestions sorts by cache timestamp ascending and keeps only the
// newest entries allowed by the policy.
func trimOldestQuestions(qs []types.CachedQuestion, policy RetentionPolicy) []types.CachedQuestion {
	overflow := policy.Overflow(len(qs))
	if overflow == 0 {
		return qs
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].CachedAt.Before(qs[j].CachedAt) })
	for i := 0; i < overflow; i++ {
		metrics.RecordCacheOp("evict")
	}
	return qs[overflow:]
}

func trimOldestAnswers(as []types.CachedAnswer, policy RetentionPolicy) []types.CachedAnswer {
	overflow := policy.Overflow(len(as))
	if overflow == 0 {
		return as
	}
	sort.Slice(as, func(i, j int) bool { return as[i].CachedAt.Before(as[j].CachedAt) })
	for i := 0; i < overflow; i++ {
		metrics.RecordCacheOp("evict")
	}
	return as[overflow:]
}
