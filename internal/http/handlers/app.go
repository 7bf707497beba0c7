package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/middleware"
)

// BlobStore is the storage surface used by the handlers.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
	URL(key string) string
	KeyForURL(url string) (string, bool)
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Sessions domain.SessionRepository
	Store    BlobStore
	NewID    func() string
}

func NewApp(cfg *infra.Config, logger *zerolog.Logger, sessions domain.SessionRepository, store BlobStore) *App {
	app := &App{
		Config:   cfg,
		Logger:   zerolog.New(io.Discard),
		Sessions: sessions,
		Store:    store,
		NewID:    uuid.NewString,
	}
	if logger != nil {
		app.Logger = *logger
	}
	return app
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCustomScene):
		a.error(w, http.StatusBadRequest, "missing_custom_scene", err.Error())
	case errors.Is(err, domain.ErrInvalidReferencePath):
		a.error(w, http.StatusBadRequest, "invalid_reference", err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
