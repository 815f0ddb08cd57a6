package handler

import (
	"github.com/MKhiriev/go-remote-config/internal/config"
	"github.com/MKhiriev/go-remote-config/internal/handler/http"
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, gatherer prometheus.Gatherer, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	logger.Info().Msg("creating new handlers...")
	return &Handlers{HTTP: http.NewHandler(services, gatherer, logger)}, nil
}
