// internal/handlers/router.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// RouterDeps はルーターを組み立てるのに必要なものをまとめます
type RouterDeps struct {
	Logger         *slog.Logger
	DB             *gorm.DB
	CORS           config.CORSConfig
	AuthMiddleware func(http.Handler) http.Handler // nil なら認証なし
	Metrics        http.Handler                    // nil なら /metrics を公開しない
	TestAttempts   *TestAttemptHandler
	Packages       *PackageHandler
}

// NewRouter はミドルウェアとAPIルートを設定した chi ルーターを返します
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(d.Logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   d.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-Role"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: d.CORS.AllowCredentials,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		if d.AuthMiddleware != nil {
			r.Use(d.AuthMiddleware)
		}

		h := d.TestAttempts
		r.Route("/tasks/{task_id}/test_attempts", func(r chi.Router) {
			r.With(middleware.RequirePermission(model.PermCreate)).Post("/session", h.GetOrCreateSession)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermViewOwn, model.PermViewOthers))
				r.Get("/", h.ListTestAttempts)
				r.Get("/latest", h.GetLatest)
			})
		})

		r.Route("/test_attempts/{test_attempt_id}", func(r chi.Router) {
			r.With(middleware.RequirePermission(model.PermViewOwn, model.PermViewOthers)).Get("/", h.GetTestAttempt)
			r.With(middleware.RequirePermission(model.PermUpdateOwn)).Patch("/", h.UpdateTestAttempt)
			r.With(middleware.RequirePermission(model.PermReviewOwn)).Patch("/review", h.RequestReview)
			r.With(middleware.RequirePermission(model.PermUpdateOwn)).Post("/terminate", h.TerminateTestAttempt)
			r.Delete("/", h.DeleteTestAttempt)
		})

		if d.Packages != nil {
			r.Get("/task_definitions/{task_def_id}/scorm/*", d.Packages.ServeFile)
		}
	})

	if d.DB != nil {
		r.Get("/health", HealthHandler(d.DB))
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	return r
}
