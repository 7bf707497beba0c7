package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"productshots/internal/http/handlers"
	"productshots/internal/infra"
	"productshots/internal/middleware"
)

// NewRouter mounts the public and authenticated API routes. Stored images are
// served read-only under /static when staticDir is set.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, staticDir string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer, middleware.Logger(logger), middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/v1/healthz", app.Health)

	if staticDir != "" {
		files := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(staticDir)))
		r.Get("/static/generated/*", files.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))
		if cfg.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		}
		r.Post("/v1/uploads", app.Upload)
		r.Route("/v1/angle-sessions", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Get("/{id}", app.GetSession)
			r.Get("/{id}/download", app.DownloadSession)
		})
	})

	return r
}
