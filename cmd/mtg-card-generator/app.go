package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/catalog/scryfall"
	"github.com/jsyiek/mtg-card-generator/internal/config"
	"github.com/jsyiek/mtg-card-generator/internal/corpus"
	"github.com/jsyiek/mtg-card-generator/internal/model"
	"github.com/jsyiek/mtg-card-generator/internal/observability"
	"github.com/jsyiek/mtg-card-generator/internal/storage"
	"github.com/jsyiek/mtg-card-generator/internal/version"
)

// app holds what every command needs: configuration, logging, the card cache
// and tracing.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *storage.DB
	tracer *observability.TracerProvider
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		if err := config.LoadDotEnv(); err != nil {
			return nil, err
		}
		return config.LoadFrom(opts.configPath)
	}
	return config.Load()
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func setupApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := newLogger(opts.debug || cfg.App.DebugMode)
	slog.SetDefault(logger)

	tracer, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "mtg-card-generator",
		ServiceVersion: version.GetVersion(),
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	dbConfig := storage.DefaultConfig(cfg.Cache.DBPath)
	dbConfig.Logger = logger
	db, err := storage.Open(dbConfig)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("open card cache: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db, tracer: tracer}, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close card cache", "error", err)
	}
}

func (a *app) loader() (*corpus.Loader, error) {
	interval, err := a.cfg.GetRequestInterval()
	if err != nil {
		return nil, err
	}
	timeout, err := a.cfg.GetCatalogTimeout()
	if err != nil {
		return nil, err
	}
	ttl, err := a.cfg.GetCacheTTL()
	if err != nil {
		return nil, err
	}

	clientConfig := scryfall.DefaultClientConfig()
	clientConfig.BaseURL = a.cfg.Catalog.BaseURL
	clientConfig.RequestInterval = interval
	clientConfig.Timeout = timeout
	clientConfig.MaxRetries = a.cfg.Catalog.MaxRetries
	clientConfig.UserAgent = "mtg-card-generator/" + version.GetVersion()
	clientConfig.Logger = a.logger

	return corpus.NewLoader(scryfall.NewClient(clientConfig), storage.NewCardRepository(a.db), corpus.LoaderConfig{
		Query:  a.cfg.Catalog.Query,
		TTL:    ttl,
		Logger: a.logger,
	}), nil
}

// buildModel loads the corpus for the categories and builds their graphs.
func (a *app) buildModel(ctx context.Context, categories []card.Category, chunkSize int, reset bool) (model.Graphs, []card.Card, error) {
	loader, err := a.loader()
	if err != nil {
		return nil, nil, err
	}

	cards, err := loader.Load(ctx, corpus.LoadOptions{Reset: reset, Categories: categories})
	if err != nil {
		return nil, nil, err
	}

	_, span := observability.StartBuildSpan(ctx, len(cards), chunkSize)
	defer span.End()

	graphs, err := model.Build(cards, model.BuildOptions{
		ChunkSize:  chunkSize,
		Categories: categories,
		Logger:     a.logger,
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, nil, fmt.Errorf("build model: %w", err)
	}
	return graphs, cards, nil
}

// parseCategories resolves card type names, falling back to def when names is empty.
func parseCategories(names []string, def []card.Category) ([]card.Category, error) {
	if len(names) == 0 {
		return def, nil
	}
	cats := make([]card.Category, 0, len(names))
	for _, name := range names {
		c, ok := card.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown card type %q", name)
		}
		cats = append(cats, c)
	}
	return cats, nil
}
