package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	router.With(middleware.Compress(5, "application/json")).Get("/api/status", h.getStatus)
	router.Get("/api/version", h.getServerVersion)
	router.Get("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
