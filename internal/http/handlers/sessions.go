package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"productshots/internal/domain"
	"productshots/internal/domain/jsoncfg"
	"productshots/internal/storage"
	"productshots/pkg/zip"
)

const maxSessionRequestBytes = 64 << 10

type sessionResponse struct {
	ID           string             `json:"id"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Request      json.RawMessage    `json:"request,omitempty"`
	Results      []domain.AngleTask `json:"results"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func toSessionResponse(rec *domain.SessionRecord) sessionResponse {
	results := rec.Results
	if results == nil {
		results = []domain.AngleTask{}
	}
	resp := sessionResponse{
		ID:           rec.ID,
		Status:       string(rec.Status),
		ErrorMessage: rec.ErrorMessage,
		Results:      results,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if len(rec.RequestJSON) > 0 {
		resp.Request = json.RawMessage(rec.RequestJSON)
	}
	return resp
}

// CreateSession validates the request and queues it for the worker.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req jsoncfg.SessionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSessionRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Normalize()

	sessionID := a.NewID()
	if _, err := req.ToDomain(sessionID, userID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.checkOwnedKey(userID, req.SourceKey); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Logo.Key != "" {
		if err := a.checkOwnedKey(userID, req.Logo.Key); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	if _, err := a.Store.Read(r.Context(), req.SourceKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusBadRequest, "invalid_reference", "source image not found")
			return
		}
		a.fail(w, r, err)
		return
	}

	rec := &domain.SessionRecord{
		ID:          sessionID,
		UserID:      userID,
		Status:      domain.SessionQueued,
		RequestJSON: jsoncfg.MustMarshal(req),
	}
	if err := a.Sessions.Create(r.Context(), rec); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("session_id", sessionID).Int("angles", len(req.Angles)).Msg("session queued")
	a.json(w, http.StatusAccepted, toSessionResponse(rec))
}

// checkOwnedKey keeps references inside the caller's upload prefix.
func (a *App) checkOwnedKey(userID, key string) error {
	if path.Clean(key) != key || !strings.HasPrefix(key, "uploads/"+userID+"/") {
		return fmt.Errorf("%w: %s is not one of your uploads", domain.ErrInvalidReferencePath, key)
	}
	return nil
}

// sessionIDParam reads the {id} path segment; session ids are uuids.
func sessionIDParam(r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessionID, ok := sessionIDParam(r)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	rec, err := a.Sessions.GetByID(r.Context(), userID, sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSessionResponse(rec))
}

// DownloadSession streams the completed angles as a zip archive.
func (a *App) DownloadSession(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessionID, ok := sessionIDParam(r)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	rec, err := a.Sessions.GetByID(r.Context(), userID, sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var assets []zip.Asset
	for i, task := range rec.Results {
		if task.Status != domain.TaskCompleted {
			continue
		}
		key, ok := a.Store.KeyForURL(task.ImageURL)
		if !ok {
			a.Logger.Warn().Str("session_id", rec.ID).Str("angle", string(task.Angle)).Msg("result url outside storage")
			continue
		}
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("session_id", rec.ID).Str("angle", string(task.Angle)).Msg("result image unreadable")
			continue
		}
		mime := storage.MIMEForKey(key)
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%02d-%s%s", i+1, task.Angle, storage.ExtensionForMIME(mime)),
			MIME:     mime,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusConflict, "no_results", "session has no completed images")
		return
	}
	archive, err := zip.ArchiveAssets(assets, rec.UpdatedAt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.zip", rec.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
