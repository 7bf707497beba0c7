package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/middleware"
	"productshots/internal/storage"
)

type memSessions struct {
	mu   sync.Mutex
	recs map[string]*domain.SessionRecord
}

func newMemSessions() *memSessions {
	return &memSessions{recs: make(map[string]*domain.SessionRecord)}
}

func (m *memSessions) Create(ctx context.Context, rec *domain.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.CreatedAt, rec.UpdatedAt = now, now
	cp := *rec
	m.recs[rec.ID] = &cp
	return nil
}

func (m *memSessions) GetByID(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[sessionID]
	if !ok || rec.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memSessions) UpdateStatus(ctx context.Context, sessionID string, status domain.SessionStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[sessionID]; ok {
		rec.Status = status
		rec.ErrorMessage = errMsg
	}
	return nil
}

func (m *memSessions) SaveResults(ctx context.Context, sessionID string, tasks []domain.AngleTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[sessionID]; ok {
		rec.Results = append([]domain.AngleTask(nil), tasks...)
	}
	return nil
}

func (m *memSessions) ListResults(ctx context.Context, sessionID string) ([]domain.AngleTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[sessionID]; ok {
		return rec.Results, nil
	}
	return nil, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestApp(t *testing.T) (*App, *memSessions, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "http://test/static")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	sessions := newMemSessions()
	app := NewApp(&infra.Config{}, nil, sessions, store)
	app.NewID = func() string { return "s-1" }
	return app, sessions, store
}

func routes(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/angle-sessions", app.CreateSession)
	r.Get("/v1/angle-sessions/{id}", app.GetSession)
	r.Get("/v1/angle-sessions/{id}/download", app.DownloadSession)
	return r
}

func authed(req *http.Request, user string) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), user))
}

func TestCreateSessionQueuesNormalizedRequest(t *testing.T) {
	app, sessions, store := newTestApp(t)
	if _, err := store.Write(context.Background(), "uploads/u1/mug.png", pngHeader); err != nil {
		t.Fatal(err)
	}
	body := `{"source_key":"uploads/u1/mug.png","angles":["wide","medium"],"visual_style":"clean"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/v1/angle-sessions", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	stored := sessions.recs["s-1"]
	if stored == nil || stored.Status != domain.SessionQueued || stored.UserID != "u1" {
		t.Fatalf("stored = %+v", stored)
	}
	var queued map[string]any
	_ = json.Unmarshal(stored.RequestJSON, &queued)
	if queued["aspect_ratio"] != "1:1" || queued["background_type"] != "studio" {
		t.Fatalf("request not normalized: %v", queued)
	}
}

func TestCreateSessionRejections(t *testing.T) {
	app, _, store := newTestApp(t)
	_, _ = store.Write(context.Background(), "uploads/u1/mug.png", pngHeader)

	cases := []struct {
		name string
		user string
		body string
		code int
		err  string
	}{
		{"no user", "", `{"source_key":"uploads/u1/mug.png"}`, http.StatusUnauthorized, "unauthorized"},
		{"bad json", "u1", `{`, http.StatusBadRequest, "bad_request"},
		{"unknown field", "u1", `{"source_key":"uploads/u1/mug.png","prompt":"x"}`, http.StatusBadRequest, "bad_request"},
		{"custom without scene", "u1", `{"source_key":"uploads/u1/mug.png","background_type":"custom"}`, http.StatusBadRequest, "missing_custom_scene"},
		{"unknown angle", "u1", `{"source_key":"uploads/u1/mug.png","angles":["aerial"]}`, http.StatusBadRequest, "bad_request"},
		{"other user's upload", "u2", `{"source_key":"uploads/u1/mug.png"}`, http.StatusBadRequest, "invalid_reference"},
		{"escaping key", "u1", `{"source_key":"uploads/u1/../../etc/passwd"}`, http.StatusBadRequest, "invalid_reference"},
		{"dot segments", "u1", `{"source_key":"uploads/u1/../u2/mug.png"}`, http.StatusBadRequest, "invalid_reference"},
		{"missing upload", "u1", `{"source_key":"uploads/u1/none.png"}`, http.StatusBadRequest, "invalid_reference"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/angle-sessions", strings.NewReader(tc.body))
			if tc.user != "" {
				req = authed(req, tc.user)
			}
			rec := httptest.NewRecorder()
			routes(app).ServeHTTP(rec, req)
			if rec.Code != tc.code || !strings.Contains(rec.Body.String(), `"code":"`+tc.err+`"`) {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

const testSessionID = "6f1c2d3e-4b5a-4c6d-8e7f-901a2b3c4d5e"

func TestGetSessionIsScopedToOwner(t *testing.T) {
	app, sessions, _ := newTestApp(t)
	_ = sessions.Create(context.Background(), &domain.SessionRecord{ID: testSessionID, UserID: "u1", Status: domain.SessionRunning})

	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/angle-sessions/"+testSessionID, nil), "u1"))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"RUNNING"`) || !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Fatalf("owner status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	routes(app).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/angle-sessions/"+testSessionID, nil), "u2"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other user status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	routes(app).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/angle-sessions/not-a-uuid", nil), "u1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id status = %d", rec.Code)
	}
}

func TestDownloadSessionZipsCompletedAngles(t *testing.T) {
	app, sessions, store := newTestApp(t)
	ctx := context.Background()
	key, _ := store.Write(ctx, storage.GeneratedKey(testSessionID, 0, domain.AngleMedium, "image/png"), pngHeader)
	_ = sessions.Create(ctx, &domain.SessionRecord{ID: testSessionID, UserID: "u1"})
	_ = sessions.SaveResults(ctx, testSessionID, []domain.AngleTask{
		{Angle: domain.AngleMedium, Status: domain.TaskCompleted, ImageURL: store.URL(key)},
		{Angle: domain.AngleCloseup, Status: domain.TaskFailed, ErrorMessage: "boom", RetryCount: 3},
	})

	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/angle-sessions/"+testSessionID+"/download", nil), "u1"))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("status = %d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("01-medium.png")) || bytes.Contains(rec.Body.Bytes(), []byte("closeup")) {
		t.Fatal("archive should contain only the completed angle")
	}
}

func TestDownloadSessionWithoutResults(t *testing.T) {
	app, sessions, _ := newTestApp(t)
	_ = sessions.Create(context.Background(), &domain.SessionRecord{ID: testSessionID, UserID: "u1"})
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/angle-sessions/"+testSessionID+"/download", nil), "u1"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}
