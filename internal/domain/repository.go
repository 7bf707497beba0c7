package domain

import "context"

// SessionRepository persists queued sessions and their per-angle results.
type SessionRepository interface {
	Create(ctx context.Context, rec *SessionRecord) error
	GetByID(ctx context.Context, userID, sessionID string) (*SessionRecord, error)
	UpdateStatus(ctx context.Context, sessionID string, status SessionStatus, errMsg string) error
	SaveResults(ctx context.Context, sessionID string, tasks []AngleTask) error
	ListResults(ctx context.Context, sessionID string) ([]AngleTask, error)
}

// BrandRepository loads brand settings owned by a user.
type BrandRepository interface {
	GetByID(ctx context.Context, brandID string) (*BrandSettings, error)
}
