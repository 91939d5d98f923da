package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/one-million-why/why-engine/pkg/apiserver"
	"github.com/one-million-why/why-engine/pkg/cache"
	"github.com/one-million-why/why-engine/pkg/completion"
	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/connectivity"
	"github.com/one-million-why/why-engine/pkg/generation"
	"github.com/one-million-why/why-engine/pkg/history"
	"github.com/one-million-why/why-engine/pkg/imageproc"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/validation"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to the configuration file")
		port       = flag.Int("port", 0, "HTTP port, overrides the configured value when set")
	)
	flag.Parse()

	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}

	var cfg *config.EngineConfig
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logging.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		logging.Warnf("config file %s not found, using defaults", *configPath)
		cfg = config.Default()
		config.Set(cfg)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Reconfigure logging from the file now that config is loaded; env vars
	// still win so operators can override a shipped config.
	if _, err := logging.InitLogger(logging.FromEnv(logging.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	})); err != nil {
		logging.Warnf("failed to reconfigure logger: %v", err)
	}

	store, err := cache.NewStoreFromConfig(cfg)
	if err != nil {
		logging.Fatalf("failed to initialize cache store: %v", err)
	}
	defer store.Close()

	offline := cache.NewOfflineCache(store, nil)
	if *cfg.Cache.SeedPopular {
		if err := offline.Seed(); err != nil {
			logging.Warnf("failed to seed offline cache: %v", err)
		}
	}

	apiKey := ""
	if cfg.Provider.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.Provider.APIKeyEnv)
		if apiKey == "" {
			logging.Warnf("environment variable %s is empty, provider calls will be unauthenticated", cfg.Provider.APIKeyEnv)
		}
	}

	provider := completion.NewOpenAIProvider(cfg, apiKey)
	client := completion.NewClient(provider, cfg.Provider.MaxAttempts,
		millis(cfg.Provider.RetryBaseDelayMS))

	catalog := tone.NewCatalog()
	validator := validation.NewValidator(client)
	histories := history.NewStore(cfg.Generation.HistoryLimit)
	checker := connectivity.NewFromConfig(cfg)
	images := imageproc.NewProcessor(nil)

	questions := generation.NewQuestionPipeline(generation.QuestionPipelineOptions{
		Completer:           client,
		Catalog:             catalog,
		Validator:           validator,
		Images:              images,
		Offline:             offline,
		Histories:           histories,
		Checker:             checker,
		MaxAttempts:         cfg.Generation.MaxAttempts,
		SimilarityThreshold: cfg.Generation.SimilarityThreshold,
		HallucinationCutoff: cfg.Generation.HallucinationConfidenceCutoff,
	})
	answers := generation.NewAnswerPipeline(client, catalog)

	server := apiserver.NewServer(questions, answers, catalog, offline, histories)
	go func() {
		if err := server.Start(cfg); err != nil {
			logging.Fatalf("API server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Infof("received signal %v, shutting down", sig)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
