package main

import (
	"context"
	"errors"
	"time"

	"productshots/internal/domain"
	"productshots/internal/domain/jsoncfg"
	"productshots/internal/infra"
	"productshots/internal/sqlinline"
)

var errNoSessionAvailable = errors.New("no session available")

type generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationSession, error)
}

type claimedSession struct {
	ID      string
	UserID  string
	Request []byte
}

type sessionWorker struct {
	sql      infra.SQLExecutor
	sessions domain.SessionRepository
	service  generator
	logger   infra.Logger
	interval time.Duration
}

// Run claims queued sessions until ctx is cancelled.
func (w *sessionWorker) Run(ctx context.Context) error {
	interval := w.interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	w.logger.Info().Msg("worker: started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		claimed, err := w.claim(ctx)
		if err != nil {
			if !errors.Is(err, errNoSessionAvailable) {
				w.logger.Error().Err(err).Msg("worker: failed to claim session")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			continue
		}
		w.handle(ctx, claimed)
	}
}

func (w *sessionWorker) claim(ctx context.Context) (claimedSession, error) {
	var c claimedSession
	row := w.sql.QueryRow(ctx, sqlinline.QWorkerClaimAngleSession)
	if err := row.Scan(&c.ID, &c.UserID, &c.Request); err != nil {
		if infra.IsNoRows(err) {
			return claimedSession{}, errNoSessionAvailable
		}
		return claimedSession{}, err
	}
	c.Request = append([]byte(nil), c.Request...)
	return c, nil
}

// handle runs one claimed session and records its final status. Results are
// persisted by the service's result sink.
func (w *sessionWorker) handle(ctx context.Context, c claimedSession) {
	log := w.logger.With().Str("session_id", c.ID).Logger()
	log.Info().Msg("worker: picked session")

	status, msg := w.process(ctx, c)
	if status == domain.SessionFailed {
		log.Error().Str("error", msg).Msg("worker: session failed")
	}
	if err := w.sessions.UpdateStatus(context.WithoutCancel(ctx), c.ID, status, msg); err != nil {
		log.Error().Err(err).Msg("worker: update status failed")
		return
	}
	log.Info().Str("status", string(status)).Msg("worker: session settled")
}

func (w *sessionWorker) process(ctx context.Context, c claimedSession) (domain.SessionStatus, string) {
	raw, err := jsoncfg.Decode(c.Request)
	if err != nil {
		return domain.SessionFailed, err.Error()
	}
	req, err := raw.ToDomain(c.ID, c.UserID)
	if err != nil {
		return domain.SessionFailed, err.Error()
	}
	session, err := w.service.Generate(ctx, req)
	if session == nil {
		if err == nil {
			err = errors.New("generation returned no session")
		}
		return domain.SessionFailed, err.Error()
	}
	status := session.Status()
	if err != nil {
		return status, err.Error()
	}
	return status, ""
}
