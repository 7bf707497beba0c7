// Package brand turns stored brand settings into the profile a session uses.
package brand

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"productshots/internal/cache"
	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/orchestrator"
	"productshots/internal/storage"
)

// InsightKeyPrefix namespaces cached resource insights.
const InsightKeyPrefix = "brand-insight:"

type resourceReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Service implements orchestrator.BrandSource.
type Service struct {
	repo     domain.BrandRepository
	store    resourceReader
	analyzer orchestrator.Analyzer
	insights *cache.ReadThrough
	logger   *infra.Logger
}

func NewService(repo domain.BrandRepository, store resourceReader, analyzer orchestrator.Analyzer, insights *cache.ReadThrough, logger *infra.Logger) *Service {
	if insights == nil {
		insights = cache.NewReadThrough(cache.Noop{}, 0, logger)
	}
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	return &Service{repo: repo, store: store, analyzer: analyzer, insights: insights, logger: logger}
}

// Profile loads the brand and builds its context text. Resource insights that
// cannot be produced are skipped.
func (s *Service) Profile(ctx context.Context, brandID string) (orchestrator.BrandProfile, error) {
	settings, err := s.repo.GetByID(ctx, brandID)
	if err != nil {
		return orchestrator.BrandProfile{}, err
	}

	var lines []string
	if name := strings.TrimSpace(settings.Name); name != "" {
		lines = append(lines, "Brand: "+name)
	}
	if voice := strings.TrimSpace(settings.Voice); voice != "" {
		lines = append(lines, voice)
	}
	for _, key := range settings.ResourceKeys {
		insight, err := s.Insight(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("brand_id", brandID).Str("resource", key).Msg("brand: resource insight skipped")
			continue
		}
		if insight != "" {
			lines = append(lines, insight)
		}
	}

	return orchestrator.BrandProfile{
		OwnerID:      settings.UserID,
		Context:      strings.Join(lines, "\n"),
		Avoid:        settings.Avoid,
		LogoKey:      settings.LogoKey,
		LogoPosition: settings.LogoPosition,
	}, nil
}

// Insight returns the cached one-line description of a brand resource image.
func (s *Service) Insight(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil
	}
	return s.insights.Get(ctx, InsightKeyPrefix+key, func(ctx context.Context) (string, error) {
		if s.analyzer == nil || s.store == nil {
			return "", nil
		}
		data, err := s.store.Read(ctx, key)
		if err != nil {
			return "", fmt.Errorf("read resource: %w", err)
		}
		attrs, err := s.analyzer.Analyze(ctx, domain.ImageRef{Key: key, MIMEType: storage.MIMEForKey(key), Data: data})
		if err != nil {
			return "", err
		}
		return insightLine(attrs), nil
	})
}

func insightLine(attrs domain.ProductAttributes) string {
	parts := []string{"Brand visual reference: " + attrs.Describe()}
	if len(attrs.Colors) > 0 {
		parts = append(parts, "palette "+strings.Join(attrs.Colors, ", "))
	}
	if s := strings.TrimSpace(attrs.Summary); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

var _ orchestrator.BrandSource = (*Service)(nil)
