package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/ai"
	"github.com/spigell/skillbridge-assistant/internal/ai/gemini"
	"github.com/spigell/skillbridge-assistant/internal/assistant"
	"github.com/spigell/skillbridge-assistant/internal/documents"
	"github.com/spigell/skillbridge-assistant/internal/events"
	"github.com/spigell/skillbridge-assistant/internal/intent"
	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
	"github.com/spigell/skillbridge-assistant/internal/secrets"
	"github.com/spigell/skillbridge-assistant/internal/storage"
	"github.com/spigell/skillbridge-assistant/internal/synthesis"
)

// application holds the wired components shared by the commands.
type application struct {
	config   *Config
	logger   *zap.Logger
	store    *storage.Store
	jobs     *jobs.Service
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	docs     *documents.Cache
	chat     *assistant.Service
	nats     *nats.Conn
}

// newApplication opens the store and builds the assistant. Close must be
// called when done.
func newApplication(ctx context.Context, config *Config, logger *zap.Logger) (*application, error) {
	a := &application{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	store, err := storage.Open(config.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	a.store = store

	publisher, err := a.publisher()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.jobs = jobs.NewService(store, publisher, logger.With(zap.String("component", "jobs")))
	if config.Storage.Seed {
		if _, err := a.jobs.Seed(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed job store: %w", err)
		}
	}

	loader := documents.NewDirLoader(config.Documents.Dir, logger.With(zap.String("component", "documents")))
	a.docs = documents.NewCache(loader, logger.With(zap.String("component", "documents")), a.metrics)

	synth := synthesis.New(synthesis.Options{
		Generator: a.generator(ctx),
		Guidance:  synthesis.DefaultGuidance,
		Timeout:   config.AI.Timeout,
		Logger:    logger.With(zap.String("component", "synthesis")),
		Metrics:   a.metrics,
	})

	asst := assistant.New(assistant.Options{
		Classifier: intent.New(config.Documents.Markers),
		Jobs:       jobs.NewMatcher(store, logger.With(zap.String("component", "matcher")), a.metrics),
		Documents:  a.docs,
		Answerer:   documents.NewRetriever(synth.Guidance(), synth),
		Logger:     logger.With(zap.String("component", "assistant")),
		Metrics:    a.metrics,
	})
	a.chat = assistant.NewService(asst, assistant.NewSessions(config.Sessions.TTL))

	return a, nil
}

// publisher connects to NATS when a URL is configured.
func (a *application) publisher() (events.Publisher, error) {
	url := strings.TrimSpace(a.config.Events.NATSURL)
	if url == "" {
		return events.Nop{}, nil
	}

	conn, err := events.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	a.nats = conn

	a.logger.Info("publishing job events",
		zap.String("nats_url", url),
		zap.String("subject", a.config.Events.Subject),
	)

	return events.NewNATSPublisher(conn, a.config.Events.Subject, a.logger.With(zap.String("component", "events"))), nil
}

// generator returns the provider client, or nil when answers should come
// from the local summary only.
func (a *application) generator(ctx context.Context) ai.Generator {
	cfg := a.config.AI
	if cfg == nil || !cfg.Enabled {
		a.logger.Info("generative provider disabled, using local summaries")
		return nil
	}

	gen, err := newGeminiGenerator(ctx, cfg, a.logger)
	if err != nil {
		a.logger.Warn("generative provider unavailable, using local summaries",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, SKILLBRIDGE_GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
		return nil
	}

	return gen
}

func newGeminiGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, gemini.Options{
		APIKey:       apiKey,
		Model:        cfg.Gemini.Model,
		MaxRetries:   cfg.Gemini.MaxRetries,
		MaxLogLength: cfg.Gemini.MaxLogLength,
		Logger:       logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)),
	})
}

// Close releases the store and the NATS connection.
func (a *application) Close() {
	if a.nats != nil {
		if err := a.nats.Drain(); err != nil {
			a.logger.Warn("draining nats connection", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing job store", zap.Error(err))
		}
	}
}
