// Package handler serves the local ops endpoint: health, status and metrics.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/legal-assistant/internal/middleware"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
)

// NewRouter builds the ops router.
func NewRouter(source StatusSource, log *logger.Logger) http.Handler {
	health := NewHealthHandler(source)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimit(120, time.Minute))

	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Get("/status", health.Status)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
