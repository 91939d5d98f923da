// Package config loads and holds the engine configuration.
package config

import "fmt"

// EngineConfig represents the main configuration for the why-engine service.
type EngineConfig struct {
	// Provider configures the completion provider endpoint.
	Provider struct {
		// Endpoint is the OpenAI-compatible chat completions URL.
		Endpoint string `yaml:"endpoint"`
		// Model is the model name sent with every request.
		Model string `yaml:"model"`
		// APIKeyEnv names the environment variable holding the API key.
		APIKeyEnv string `yaml:"api_key_env,omitempty"`
		// TimeoutSeconds bounds a single provider call.
		TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
		// MaxTokens and Temperature are passed through to the provider.
		MaxTokens   int     `yaml:"max_tokens,omitempty"`
		Temperature float64 `yaml:"temperature,omitempty"`
		// MaxAttempts is the retry ceiling for one logical completion call.
		MaxAttempts int `yaml:"max_attempts,omitempty"`
		// RetryBaseDelayMS is the exponential backoff base in milliseconds.
		RetryBaseDelayMS int `yaml:"retry_base_delay_ms,omitempty"`
	} `yaml:"provider"`

	// Generation configures the question pipeline.
	Generation struct {
		// MaxAttempts bounds the generation loop.
		MaxAttempts int `yaml:"max_attempts,omitempty"`
		// SimilarityThreshold is the word-overlap ratio above which a
		// candidate counts as a duplicate of a previous question.
		SimilarityThreshold float64 `yaml:"similarity_threshold,omitempty"`
		// HallucinationConfidenceCutoff: an invalid hallucination verdict
		// below this confidence fails the attempt.
		HallucinationConfidenceCutoff int `yaml:"hallucination_confidence_cutoff,omitempty"`
		// HistoryLimit bounds per-user question history.
		HistoryLimit int `yaml:"history_limit,omitempty"`
	} `yaml:"generation"`

	// Cache configures the offline cache store.
	Cache struct {
		// BackendType selects the store implementation ("memory" or "redis").
		BackendType string `yaml:"backend_type,omitempty"`
		// MaxEntries bounds each of the question and answer collections.
		MaxEntries int `yaml:"max_entries,omitempty"`
		// TTLSeconds sets entry expiry (default: 7 days).
		TTLSeconds int `yaml:"ttl_seconds,omitempty"`
		// SeedPopular seeds the cache with pre-authored Q&A pairs at startup.
		SeedPopular *bool `yaml:"seed_popular,omitempty"`
		// Redis specific settings, used when backend_type is "redis".
		Redis RedisConfig `yaml:"redis,omitempty"`
	} `yaml:"cache"`

	// Offline configures connectivity detection.
	Offline struct {
		// Forced pins the engine to the offline path regardless of probes.
		Forced bool `yaml:"forced,omitempty"`
		// ProbeURL, when set, is dialed to decide whether the provider is
		// reachable. Empty means "assume online".
		ProbeURL string `yaml:"probe_url,omitempty"`
		// ProbeTimeoutSeconds bounds a single probe.
		ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds,omitempty"`
	} `yaml:"offline"`

	// Server configures the HTTP API surface.
	Server struct {
		Port                int `yaml:"port,omitempty"`
		ReadTimeoutSeconds  int `yaml:"read_timeout_seconds,omitempty"`
		WriteTimeoutSeconds int `yaml:"write_timeout_seconds,omitempty"`
		IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds,omitempty"`
	} `yaml:"server"`

	// Logging configures the zap logger.
	Logging struct {
		Level       string `yaml:"level,omitempty"`
		Encoding    string `yaml:"encoding,omitempty"`
		Development bool   `yaml:"development,omitempty"`
	} `yaml:"logging,omitempty"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password,omitempty"`
	Database  int    `yaml:"database,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// Addr returns the host:port address for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

const (
	defaultProviderTimeoutSeconds = 60
	defaultProviderMaxAttempts    = 3
	defaultRetryBaseDelayMS       = 1000
	defaultMaxTokens              = 500
	defaultTemperature            = 0.7

	defaultGenerationMaxAttempts = 3
	defaultSimilarityThreshold   = 0.80
	defaultHallucinationCutoff   = 70
	defaultHistoryLimit          = 50

	defaultCacheBackend    = "memory"
	defaultCacheMaxEntries = 100
	defaultCacheTTLSeconds = 7 * 24 * 60 * 60

	defaultServerPort          = 3000
	defaultServerReadTimeoutS  = 30
	defaultServerWriteTimeoutS = 30
	defaultServerIdleTimeoutS  = 60
	defaultProbeTimeoutSeconds = 5
)

// applyDefaults fills zero-valued fields after unmarshalling.
func (c *EngineConfig) applyDefaults() {
	p := &c.Provider
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultProviderMaxAttempts
	}
	if p.RetryBaseDelayMS <= 0 {
		p.RetryBaseDelayMS = defaultRetryBaseDelayMS
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	if p.Temperature <= 0 {
		p.Temperature = defaultTemperature
	}

	g := &c.Generation
	if g.MaxAttempts <= 0 {
		g.MaxAttempts = defaultGenerationMaxAttempts
	}
	if g.SimilarityThreshold <= 0 {
		g.SimilarityThreshold = defaultSimilarityThreshold
	}
	if g.HallucinationConfidenceCutoff <= 0 {
		g.HallucinationConfidenceCutoff = defaultHallucinationCutoff
	}
	if g.HistoryLimit <= 0 {
		g.HistoryLimit = defaultHistoryLimit
	}

	ca := &c.Cache
	if ca.BackendType == "" {
		ca.BackendType = defaultCacheBackend
	}
	if ca.MaxEntries <= 0 {
		ca.MaxEntries = defaultCacheMaxEntries
	}
	if ca.TTLSeconds <= 0 {
		ca.TTLSeconds = defaultCacheTTLSeconds
	}
	if ca.SeedPopular == nil {
		seed := true
		ca.SeedPopular = &seed
	}

	o := &c.Offline
	if o.ProbeTimeoutSeconds <= 0 {
		o.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}

	s := &c.Server
	if s.Port <= 0 {
		s.Port = defaultServerPort
	}
	if s.ReadTimeoutSeconds <= 0 {
		s.ReadTimeoutSeconds = defaultServerReadTimeoutS
	}
	if s.WriteTimeoutSeconds <= 0 {
		s.WriteTimeoutSeconds = defaultServerWriteTimeoutS
	}
	if s.IdleTimeoutSeconds <= 0 {
		s.IdleTimeoutSeconds = defaultServerIdleTimeoutS
	}
}

// validate rejects configurations the engine cannot run with.
func (c *EngineConfig) validate() error {
	switch c.Cache.BackendType {
	case "memory":
	case "redis":
		if c.Cache.Redis.Host == "" {
			return fmt.Errorf("cache.redis.host is required when backend_type is redis")
		}
		if c.Cache.Redis.Port <= 0 {
			return fmt.Errorf("cache.redis.port is required when backend_type is redis")
		}
	default:
		return fmt.Errorf("unknown cache backend_type: %q", c.Cache.BackendType)
	}
	if c.Generation.SimilarityThreshold > 1 {
		return fmt.Errorf("generation.similarity_threshold must be in (0,1], got %v", c.Generation.SimilarityThreshold)
	}
	if c.Generation.HallucinationConfidenceCutoff > 100 {
		return fmt.Errorf("generation.hallucination_confidence_cutoff must be in (0,100], got %d", c.Generation.HallucinationConfidenceCutoff)
	}
	return nil
}
