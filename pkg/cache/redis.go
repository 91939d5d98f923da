package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/observability/metrics"
	"github.com/one-million-why/why-engine/pkg/types"
)

// RedisStore is the durable store backend. Entries are JSON values with a
// native TTL; two sorted sets ordered by cache timestamp provide the
// capacity bound and oldest-first eviction.
type RedisStore struct {
	client *redis.Client
	policy RetentionPolicy
	prefix string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(rc config.RedisConfig, policy RetentionPolicy) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr(),
		Password: rc.Password,
		DB:       rc.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr(), err)
	}

	prefix := rc.KeyPrefix
	if prefix == "" {
		prefix = "whyengine"
	}

	logging.Infof("redis cache store connected at %s (prefix=%s)", rc.Addr(), prefix)
	return &RedisStore{client: client, policy: policy, prefix: prefix}, nil
}

func (s *RedisStore) questionKey(id string) string { return s.prefix + ":q:" + id }
func (s *RedisStore) answerKey(id string) string   { return s.prefix + ":a:" + id }
func (s *RedisStore) answerIdxKey(questionID string) string {
	return s.prefix + ":aidx:" + questionID
}
func (s *RedisStore) questionZSet() string { return s.prefix + ":qz" }
func (s *RedisStore) answerZSet() string   { return s.prefix + ":az" }

func (s *RedisStore) PutQuestion(q types.CachedQuestion) error {
	ctx := context.Background()
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal cached question: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.questionKey(q.ID), data, s.policy.TTL)
	pipe.ZAdd(ctx, s.questionZSet(), redis.Z{Score: float64(q.CachedAt.UnixMilli()), Member: q.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store cached question: %w", err)
	}
	metrics.RecordCacheOp("add")

	return s.trim(ctx, s.questionZSet(), s.questionKey)
}

func (s *RedisStore) PutAnswer(a types.CachedAnswer) error {
	ctx := context.Background()
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal cached answer: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.answerKey(a.ID), data, s.policy.TTL)
	pipe.Set(ctx, s.answerIdxKey(a.QuestionID), a.ID, s.policy.TTL)
	pipe.ZAdd(ctx, s.answerZSet(), redis.Z{Score: float64(a.CachedAt.UnixMilli()), Member: a.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store cached answer: %w", err)
	}
	metrics.RecordCacheOp("add")

	return s.trim(ctx, s.answerZSet(), s.answerKey)
}

// trim evicts the oldest zset members beyond the capacity bound.
func (s *RedisStore) trim(ctx context.Context, zset string, keyFn func(string) string) error {
	n, err := s.client.ZCard(ctx, zset).Result()
	if err != nil {
		return err
	}
	overflow := s.policy.Overflow(int(n))
	if overflow == 0 {
		return nil
	}

	victims, err := s.client.ZRange(ctx, zset, 0, int64(overflow-1)).Result()
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	for _, id := range victims {
		pipe.Del(ctx, keyFn(id))
		pipe.ZRem(ctx, zset, id)
		metrics.RecordCacheOp("evict")
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Questions() ([]types.CachedQuestion, error) {
	ctx := context.Background()
	ids, err := s.client.ZRange(ctx, s.questionZSet(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cached questions: %w", err)
	}

	var out []types.CachedQuestion
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.questionKey(id)).Bytes()
		if err == redis.Nil {
			// Value expired under us; drop the index entry.
			s.client.ZRem(ctx, s.questionZSet(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var q types.CachedQuestion
		if err := json.Unmarshal(data, &q); err != nil {
			logging.Warnf("dropping undecodable cached question %s: %v", id, err)
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *RedisStore) AnswerFor(questionID string) (*types.CachedAnswer, error) {
	ctx := context.Background()
	id, err := s.client.Get(ctx, s.answerIdxKey(questionID)).Result()
	if err == redis.Nil {
		metrics.RecordCacheOp("miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.answerKey(id)).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheOp("miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a types.CachedAnswer
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode cached answer %s: %w", id, err)
	}
	metrics.RecordCacheOp("hit")
	return &a, nil
}

// ClearExpired removes index entries whose values redis has already expired.
func (s *RedisStore) ClearExpired() (int, error) {
	ctx := context.Background()
	removed := 0

	for _, pair := range []struct {
		zset  string
		keyFn func(string) string
	}{
		{s.questionZSet(), s.questionKey},
		{s.answerZSet(), s.answerKey},
	} {
		ids, err := s.client.ZRange(ctx, pair.zset, 0, -1).Result()
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			exists, err := s.client.Exists(ctx, pair.keyFn(id)).Result()
			if err != nil {
				return removed, err
			}
			if exists == 0 {
				s.client.ZRem(ctx, pair.zset, id)
				metrics.RecordCacheOp("expire")
				removed++
			}
		}
	}
	return removed, nil
}

func (s *RedisStore) Stats() (Stats, error) {
	ctx := context.Background()
	qn, err := s.client.ZCard(ctx, s.questionZSet()).Result()
	if err != nil {
		return Stats{}, err
	}
	an, err := s.client.ZCard(ctx, s.answerZSet()).Result()
	if err != nil {
		return Stats{}, err
	}
	// Redis drops expired values itself; index entries not yet reconciled
	// count as expired.
	expired := 0
	for _, pair := range []struct {
		zset  string
		keyFn func(string) string
	}{
		{s.questionZSet(), s.questionKey},
		{s.answerZSet(), s.answerKey},
	} {
		ids, err := s.client.ZRange(ctx, pair.zset, 0, -1).Result()
		if err != nil {
			return Stats{}, err
		}
		for _, id := range ids {
			exists, err := s.client.Exists(ctx, pair.keyFn(id)).Result()
			if err != nil {
				return Stats{}, err
			}
			if exists == 0 {
				expired++
			}
		}
	}
	return Stats{Questions: int(qn), Answers: int(an), ExpiredItems: expired}, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
