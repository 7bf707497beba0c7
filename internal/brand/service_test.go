package brand

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"productshots/internal/cache"
	"productshots/internal/domain"
)

type stubRepo struct {
	settings *domain.BrandSettings
	err      error
}

func (s stubRepo) GetByID(ctx context.Context, brandID string) (*domain.BrandSettings, error) {
	return s.settings, s.err
}

type stubReader map[string][]byte

func (s stubReader) Read(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s[key]; ok {
		return data, nil
	}
	return nil, domain.ErrNotFound
}

type countingAnalyzer struct {
	calls int
}

func (c *countingAnalyzer) Analyze(ctx context.Context, img domain.ImageRef) (domain.ProductAttributes, error) {
	c.calls++
	return domain.ProductAttributes{ProductType: "packaging", Colors: []string{"forest green", "cream"}}, nil
}

func TestProfileBuildsContextAndCachesInsights(t *testing.T) {
	repo := stubRepo{settings: &domain.BrandSettings{
		ID:           "b1",
		Name:         "Kopi Senja",
		Voice:        "Calm, earthy, handcrafted.",
		LogoKey:      "brand/logo.png",
		LogoPosition: domain.LogoTopRight,
		Avoid:        []string{"neon colors"},
		ResourceKeys: []string{"brand/pack.png", "brand/missing.png"},
	}}
	analyzer := &countingAnalyzer{}
	svc := NewService(repo, stubReader{"brand/pack.png": []byte("png")}, analyzer, cache.NewReadThrough(cache.NewMemory(), time.Hour, nil), nil)

	profile, err := svc.Profile(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Profile error: %v", err)
	}
	want := "Brand: Kopi Senja\nCalm, earthy, handcrafted.\nBrand visual reference: packaging; palette forest green, cream"
	if profile.Context != want {
		t.Fatalf("context = %q", profile.Context)
	}
	if profile.LogoKey != "brand/logo.png" || profile.LogoPosition != domain.LogoTopRight {
		t.Fatalf("logo = %q / %q", profile.LogoKey, profile.LogoPosition)
	}
	if len(profile.Avoid) != 1 || !strings.Contains(profile.Avoid[0], "neon") {
		t.Fatalf("avoid = %v", profile.Avoid)
	}

	if _, err := svc.Profile(context.Background(), "b1"); err != nil {
		t.Fatalf("second Profile error: %v", err)
	}
	if analyzer.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", analyzer.calls)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc := NewService(stubRepo{err: domain.ErrNotFound}, nil, nil, nil, nil)
	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v", err)
	}
}
