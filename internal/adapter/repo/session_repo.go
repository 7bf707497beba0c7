package repo

import (
	"context"
	"fmt"

	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/sqlinline"
)

// SessionRepositoryPG implements domain.SessionRepository.
type SessionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSessionRepository creates a session repository backed by PostgreSQL.
func NewSessionRepository(sql infra.SQLExecutor) *SessionRepositoryPG {
	return &SessionRepositoryPG{sql: sql}
}

// Create inserts a queued session.
func (r *SessionRepositoryPG) Create(ctx context.Context, rec *domain.SessionRecord) error {
	status := rec.Status
	if status == "" {
		status = domain.SessionQueued
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertAngleSession, rec.ID, rec.UserID, string(status), rec.RequestJSON)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	rec.Status = status
	return nil
}

// GetByID returns the session with its stored results. Sessions owned by
// another user are reported as not found.
func (r *SessionRepositoryPG) GetByID(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var status string
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAngleSession, sessionID, userID)
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&status,
		&rec.RequestJSON,
		&rec.ErrorMessage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Status = domain.SessionStatus(status)

	results, err := r.ListResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rec.Results = results
	return &rec, nil
}

// UpdateStatus sets the session status and error message.
func (r *SessionRepositoryPG) UpdateStatus(ctx context.Context, sessionID string, status domain.SessionStatus, errMsg string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateAngleSessionStatus, sessionID, string(status), errMsg)
	return err
}

// SaveResults upserts every task keyed by its position in the run order.
func (r *SessionRepositoryPG) SaveResults(ctx context.Context, sessionID string, tasks []domain.AngleTask) error {
	if len(tasks) == 0 {
		return nil
	}
	positions := make([]int32, len(tasks))
	angles := make([]string, len(tasks))
	statuses := make([]string, len(tasks))
	urls := make([]string, len(tasks))
	messages := make([]string, len(tasks))
	retries := make([]int32, len(tasks))
	for i, t := range tasks {
		positions[i] = int32(i)
		angles[i] = string(t.Angle)
		statuses[i] = string(t.Status)
		urls[i] = t.ImageURL
		messages[i] = t.ErrorMessage
		retries[i] = int32(t.RetryCount)
	}
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertAngleResults, sessionID, positions, angles, statuses, urls, messages, retries)
	return err
}

// ListResults returns the stored tasks in run order.
func (r *SessionRepositoryPG) ListResults(ctx context.Context, sessionID string) ([]domain.AngleTask, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectAngleResults, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AngleTask
	for rows.Next() {
		var t domain.AngleTask
		var angle, status string
		var retries int32
		if err := rows.Scan(&angle, &status, &t.ImageURL, &t.ErrorMessage, &retries); err != nil {
			return nil, err
		}
		t.Angle = domain.Angle(angle)
		t.Status = domain.TaskStatus(status)
		t.RetryCount = int(retries)
		out = append(out, t)
	}
	return out, rows.Err()
}

// EnsureSchema creates the tables used by the repositories.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

var _ domain.SessionRepository = (*SessionRepositoryPG)(nil)
