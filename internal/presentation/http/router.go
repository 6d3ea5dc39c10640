package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter は、HTTP APIのルーティングとミドルウェアを設定したハンドラーを返します
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID, middleware.RealIP, Recoverer(logger), Logger(logger))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.Options)
		r.Post("/generate", h.Generate)
	})

	return r
}
