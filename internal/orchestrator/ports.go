package orchestrator

import (
	"context"

	"productshots/internal/domain"
)

// Analyzer turns the reference photo into product attributes.
type Analyzer interface {
	Analyze(ctx context.Context, img domain.ImageRef) (domain.ProductAttributes, error)
}

// Compositor overlays a logo onto a rendered image.
type Compositor interface {
	Apply(ctx context.Context, img, logo domain.ImageRef, pos domain.LogoPosition, size domain.OutputSize) (domain.ImageRef, error)
}

// ImageStore reads reference images and persists generated ones. Read must
// reject keys outside the storage root with domain.ErrInvalidReferencePath.
type ImageStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
	URL(key string) string
}

// BrandProfile is the brand data a session consumes.
type BrandProfile struct {
	OwnerID      string
	Context      string
	Avoid        []string
	LogoKey      string
	LogoPosition domain.LogoPosition
}

// BrandSource loads a brand profile by id.
type BrandSource interface {
	Profile(ctx context.Context, brandID string) (BrandProfile, error)
}

// ResultSink receives the settled tasks once a session finishes.
type ResultSink interface {
	SaveResults(ctx context.Context, sessionID string, tasks []domain.AngleTask) error
}
