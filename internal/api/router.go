package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Gabee01/pii-detector-sub000/internal/metrics"
)

// NewRouter creates a chi router with the webhook and operational endpoints
func NewRouter(enqueuer Enqueuer, webhookSecret string) http.Handler {
	h := &Handler{enqueuer: enqueuer, secret: webhookSecret}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/webhooks/notion", h.handleWebhook)
	r.Get("/livez", h.handleLiveness)
	r.Handle("/metrics", metrics.Handler())

	return r
}
