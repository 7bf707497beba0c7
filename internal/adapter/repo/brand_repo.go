package repo

import (
	"context"

	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/sqlinline"
)

// BrandRepositoryPG implements domain.BrandRepository.
type BrandRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewBrandRepository(sql infra.SQLExecutor) *BrandRepositoryPG {
	return &BrandRepositoryPG{sql: sql}
}

// GetByID loads brand settings. An unknown or invalid logo position falls back
// to the default anchor.
func (r *BrandRepositoryPG) GetByID(ctx context.Context, brandID string) (*domain.BrandSettings, error) {
	var b domain.BrandSettings
	var position string
	row := r.sql.QueryRow(ctx, sqlinline.QSelectBrandSettings, brandID)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Voice,
		&b.LogoKey,
		&position,
		&b.Avoid,
		&b.ResourceKeys,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	pos, err := domain.ParseLogoPosition(position)
	if err != nil {
		pos = domain.LogoBottomRight
	}
	b.LogoPosition = pos
	return &b, nil
}

var _ domain.BrandRepository = (*BrandRepositoryPG)(nil)
