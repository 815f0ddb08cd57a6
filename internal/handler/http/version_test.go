package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerWithAppInfo(svc service.AppInfoService) *Handler {
	return NewHandler(&service.Services{AppInfoService: svc}, nil, logger.Nop())
}

func TestGetServerVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"semver", "1.2.3"},
		{"empty", ""},
		{"pre-release", "v1.2.3-beta+build.42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlerWithAppInfo(&stubAppInfo{version: tt.version})

			rec := httptest.NewRecorder()
			h.getServerVersion(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.version, rec.Body.String())
			assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		})
	}
}
