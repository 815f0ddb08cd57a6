package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-remote-config/internal/logger"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status := h.services.StatusProvider.Status()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to encode status")
	}
}
