package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/config"
	dbRedis "github.com/kailas-cloud/catalograg/internal/db/redis"
	"github.com/kailas-cloud/catalograg/internal/domain"
	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	budgetrepo "github.com/kailas-cloud/catalograg/internal/repository/budget"
	catalogrepo "github.com/kailas-cloud/catalograg/internal/repository/catalog"
	"github.com/kailas-cloud/catalograg/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/catalograg/internal/repository/search"
	openaiTransport "github.com/kailas-cloud/catalograg/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	"github.com/kailas-cloud/catalograg/internal/usecase/generator"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	"github.com/kailas-cloud/catalograg/internal/usecase/optimizer"
	"github.com/kailas-cloud/catalograg/internal/usecase/pipeline"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
	"github.com/kailas-cloud/catalograg/internal/usecase/session"
)

// embedder is what both the retriever and the indexer need from the chain.
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	provider *embeddinguc.Provider
	llm      *openaiTransport.LLM
	pipeline *pipeline.Service
	health   *healthuc.Service
	indexer  *indexer.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterAll()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, seconds(cfg.Database.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	layout := domcat.NewLayout(cfg.Storage.KeyPrefix)

	provider := buildProvider(ctx, cfg, store, layout, logger)
	queryEmbedder := withInstruction(provider, cfg.Embedding.QueryInstruction)
	docEmbedder := withInstruction(provider, cfg.Embedding.DocumentInstruction)

	llm := openaiTransport.NewLLM(&openaiTransport.LLMConfig{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Timeout:           seconds(cfg.LLM.TimeoutSec),
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		Logger:            logger,
	})

	ret := retriever.New(queryEmbedder, searchrepo.New(store, layout), logger,
		retriever.WithLimit(cfg.Pipeline.Limit),
		retriever.WithThreshold(cfg.Pipeline.Threshold),
	)
	opt := optimizer.New(llm, seconds(cfg.Pipeline.OptimizerTimeoutSec), logger)
	gen := generator.New(llm, seconds(cfg.Pipeline.GeneratorTimeoutSec), logger)
	pipe := pipeline.New(opt, ret, gen, session.NewStore(), logger)

	products := catalogrepo.New(store, layout, cfg.Embedding.Dimensions).WithHNSW(catalogrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		provider: provider,
		llm:      llm,
		pipeline: pipe,
		health:   healthuc.New(store, pipe, provider),
		indexer:  indexer.New(docEmbedder, products, logger).WithBatchSize(cfg.Index.BatchSize),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildProvider assembles the embedding chain: OpenAI -> Cached -> Provider (budget, metrics).
// Instruction prefixes are applied on top so the cache key includes them.
func buildProvider(
	ctx context.Context,
	cfg *config.Config,
	store *dbRedis.Store,
	layout domcat.Layout,
	logger *zap.Logger,
) *embeddinguc.Provider {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    seconds(cfg.Embedding.TimeoutSec),
		Logger:     logger,
	})

	var inner domain.Embedder = base
	if cfg.Embedding.Cache.Enabled {
		inner = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger,
			embcache.WithKeyPrefix(layout.EmbeddingCachePrefix()),
			embcache.WithModel(cfg.Embedding.Model),
			embcache.WithTTL(time.Duration(cfg.Embedding.Cache.TTLHours)*time.Hour),
		)
	}

	// A typed nil *BudgetTracker inside the interface would not compare equal to nil.
	var budget embeddinguc.BudgetChecker
	if b := cfg.Embedding.Budget; b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 {
		budget = embeddinguc.NewBudgetTracker(embeddinguc.BudgetConfig{
			Provider:     cfg.Embedding.Provider,
			KeyPrefix:    layout.Prefix(),
			DailyLimit:   b.DailyTokenLimit,
			MonthlyLimit: b.MonthlyTokenLimit,
			Action:       embeddinguc.BudgetAction(b.Action),
		}, logger).WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}

	return embeddinguc.NewProvider(
		inner, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimensions, budget, logger,
	)
}

func withInstruction(p *embeddinguc.Provider, instruction string) embedder {
	if instruction == "" {
		return p
	}
	return domain.NewInstructionEmbedder(p, instruction)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
