package http

import (
	"net/http"

	"github.com/google/uuid"
)

const traceIDHeader = "X-Trace-ID"

// withTraceID echoes the caller's X-Trace-ID, or a fresh one, and attaches a
// request logger carrying it to the context.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		reqLogger := h.logger.With().Str("trace_id", traceID).Logger()
		w.Header().Set(traceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(reqLogger.WithContext(r.Context())))
	})
}
