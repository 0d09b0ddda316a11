package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fusebot/internal/platform/health"
	authmw "fusebot/pkg/platform/middleware/auth"
	"fusebot/pkg/platform/middleware/request"
)

// NewRouter assembles the HTTP surface: health and metrics stay open for
// probes and scrapers, the bot API sits behind the runtime bearer check.
func NewRouter(h *Handler, verifier *authmw.Verifier, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(60 * time.Second))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(verifier.Middleware)
		r.Use(request.ContentTypeJSON)
		h.Register(r)
	})

	return r
}
