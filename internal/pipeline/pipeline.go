// Package pipeline assembles the generation service from configuration.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"productshots/internal/blueprint"
	"productshots/internal/brand"
	"productshots/internal/brandctx"
	"productshots/internal/cache"
	"productshots/internal/compositor"
	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/intent"
	"productshots/internal/orchestrator"
	"productshots/internal/providers/genai"
	"productshots/internal/providers/image"
	"productshots/internal/providers/vision"
	"productshots/internal/storage"
)

// Deps are the collaborators that differ between the worker and the CLI.
// Brands and Sink are optional; a nil Cache uses process memory.
type Deps struct {
	Config     *infra.Config
	Logger     *infra.Logger
	Store      *storage.FileStore
	GeminiKey  string
	Brands     domain.BrandRepository
	Sink       orchestrator.ResultSink
	Cache      cache.Cache
	HTTPClient *http.Client
}

// NewInsightCache returns a Redis-backed cache when REDIS_ADDR is set and an
// in-memory one otherwise.
func NewInsightCache(cfg *infra.Config) cache.Cache {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return cache.NewMemory()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	return cache.NewRedis(client, "productshots:")
}

// NewService builds an orchestrator.Service. Without a Gemini key the REST
// client answers with synthetic output, and the SDK backend is not used.
func NewService(ctx context.Context, d Deps) (*orchestrator.Service, error) {
	if d.Config == nil || d.Store == nil {
		return nil, fmt.Errorf("pipeline: config and store are required")
	}
	logger := d.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	cfg := d.Config
	key := strings.TrimSpace(d.GeminiKey)

	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	client, err := genai.NewClient(genai.Options{
		APIKey:      key,
		BaseURL:     cfg.GeminiBaseURL,
		VisionModel: cfg.GeminiVisionModel,
		ImageModel:  cfg.GeminiImageModel,
		HTTPClient:  httpClient,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	if client.Synthetic() {
		logger.Warn().Str("model", client.ImageModel()).Msg("pipeline: gemini api key missing, using synthetic output")
	}

	renderer, err := newRenderer(ctx, cfg, key, client, logger)
	if err != nil {
		return nil, err
	}

	vocab, err := intent.LoadVocabulary(cfg.IntentVocabularyPath)
	if err != nil {
		return nil, err
	}

	analyzer := vision.NewAnalyzer(client)
	var brands orchestrator.BrandSource
	if d.Brands != nil {
		backing := d.Cache
		if backing == nil {
			backing = cache.NewMemory()
		}
		insights := cache.NewReadThrough(backing, cfg.InsightCacheTTL, logger)
		brands = brand.NewService(d.Brands, d.Store, analyzer, insights, logger)
	}

	return orchestrator.NewService(orchestrator.Options{
		Analyzer:    analyzer,
		Renderer:    renderer,
		Compositor:  compositor.New(),
		Store:       d.Store,
		Brands:      brands,
		Sink:        d.Sink,
		Resolver:    intent.NewResolver(vocab),
		Sanitizer:   brandctx.NewSanitizer(vocab.NoisyStyles),
		Guardrails:  blueprint.DefaultRegistry(),
		Logger:      logger,
		MaxAttempts: cfg.MaxRenderAttempts,
	})
}

func newRenderer(ctx context.Context, cfg *infra.Config, key string, client *genai.Client, logger *infra.Logger) (image.Renderer, error) {
	switch cfg.RenderBackend {
	case infra.RenderBackendSDK:
		if key == "" {
			logger.Warn().Msg("pipeline: sdk backend needs an api key, falling back to rest")
			return image.NewGeminiRenderer(client), nil
		}
		return image.NewSDKRenderer(ctx, image.SDKOptions{APIKey: key, Model: cfg.GeminiImageModel, Logger: logger})
	case infra.RenderBackendREST, "":
		return image.NewGeminiRenderer(client), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown render backend %q", cfg.RenderBackend)
	}
}
