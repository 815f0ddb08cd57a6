package server

import (
	"github.com/MKhiriev/go-remote-config/internal/config"
	"github.com/MKhiriev/go-remote-config/internal/handler"
	"github.com/MKhiriev/go-remote-config/internal/logger"
)

// NewServer builds the status server. It returns errNoServersAreCreated when
// no HTTP handler is available.
func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return newHTTPServer(handlers.HTTP.Init(), cfg, logger), nil
}
