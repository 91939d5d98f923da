package cache

import (
	"fmt"
	"time"

	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
)

// NewStoreFromConfig builds the store backend selected by the engine
// configuration.
func NewStoreFromConfig(cfg *config.EngineConfig) (Store, error) {
	policy := RetentionPolicy{
		MaxEntries: cfg.Cache.MaxEntries,
		TTL:        time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	}

	switch cfg.Cache.BackendType {
	case "memory":
		logging.Infof("using in-memory cache store (max_entries=%d, ttl=%v)", policy.MaxEntries, policy.TTL)
		return NewMemoryStore(policy), nil
	case "redis":
		return NewRedisStore(cfg.Cache.Redis, policy)
	default:
		return nil, fmt.Errorf("unknown cache backend type: %q", cfg.Cache.BackendType)
	}
}
