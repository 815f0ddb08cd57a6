package http

import (
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

type Handler struct {
	services *service.Services
	gatherer prometheus.Gatherer

	logger *logger.Logger
}

// NewHandler creates the status handler. gatherer backs /metrics; a nil
// gatherer falls back to the default Prometheus registry.
func NewHandler(services *service.Services, gatherer prometheus.Gatherer, logger *logger.Logger) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		gatherer: gatherer,
		logger:   logger,
	}
}
