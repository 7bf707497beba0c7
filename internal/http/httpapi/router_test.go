package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"productshots/internal/domain"
	"productshots/internal/http/handlers"
	"productshots/internal/infra"
	"productshots/internal/middleware"
	"productshots/internal/storage"
)

type emptySessions struct{}

func (emptySessions) Create(ctx context.Context, rec *domain.SessionRecord) error { return nil }

func (emptySessions) GetByID(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error) {
	return nil, domain.ErrNotFound
}

func (emptySessions) UpdateStatus(ctx context.Context, sessionID string, status domain.SessionStatus, errMsg string) error {
	return nil
}

func (emptySessions) SaveResults(ctx context.Context, sessionID string, tasks []domain.AngleTask) error {
	return nil
}

func (emptySessions) ListResults(ctx context.Context, sessionID string) ([]domain.AngleTask, error) {
	return nil, nil
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFileStore(dir, "http://test/static")
	_, _ = store.Write(context.Background(), "generated/s1/01-medium.png", []byte("\x89PNG\r\n\x1a\n"))
	_, _ = store.Write(context.Background(), "uploads/u1/mug.png", []byte("\x89PNG\r\n\x1a\n"))

	cfg := &infra.Config{JWTSecret: "secret", CORSAllowedOrigins: []string{"http://localhost:3000"}, RateLimitPerMin: 100}
	app := handlers.NewApp(cfg, nil, emptySessions{}, store)
	router := NewRouter(app, cfg, zerolog.Nop(), dir)

	token, _ := middleware.SignJWT("secret", "u1", time.Hour)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health", http.MethodGet, "/v1/healthz", "", http.StatusOK},
		{"session requires auth", http.MethodGet, "/v1/angle-sessions/s1", "", http.StatusUnauthorized},
		{"unknown session", http.MethodGet, "/v1/angle-sessions/s1", token, http.StatusNotFound},
		{"generated image served", http.MethodGet, "/static/generated/s1/01-medium.png", "", http.StatusOK},
		{"uploads not served", http.MethodGet, "/static/uploads/u1/mug.png", "", http.StatusNotFound},
		{"preflight", http.MethodOptions, "/v1/angle-sessions", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatal("missing request id header")
			}
		})
	}
}
