package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"productshots/internal/adapter/repo"
	"productshots/internal/infra"
	"productshots/internal/infra/credentials"
	"productshots/internal/pipeline"
	"productshots/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	if err := repo.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("worker: ensure schema failed")
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	geminiKey, err := credentials.NewStore(runner).ResolveGeminiKey(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to load gemini api key from store")
	}

	sessions := repo.NewSessionRepository(runner)
	svc, err := pipeline.NewService(ctx, pipeline.Deps{
		Config:    cfg,
		Logger:    &logger,
		Store:     fileStore,
		GeminiKey: geminiKey,
		Brands:    repo.NewBrandRepository(runner),
		Sink:      sessions,
		Cache:     pipeline.NewInsightCache(cfg),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build generation service")
	}

	w := &sessionWorker{
		sql:      runner,
		sessions: sessions,
		service:  svc,
		logger:   logger,
		interval: cfg.WorkerPollInterval,
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
