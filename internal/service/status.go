package service

import (
	"slices"
	"time"

	"github.com/MKhiriev/go-remote-config/models"
)

// Status is a read-only snapshot of a [SyncManager] for the status endpoint.
type Status struct {
	ClientID     string   `json:"client_id"`
	RuntimeID    string   `json:"runtime_id"`
	Service      string   `json:"service"`
	Env          string   `json:"env"`
	AppVersion   string   `json:"app_version"`
	Products     []string `json:"products"`
	Capabilities string   `json:"capabilities"`
	Running      bool     `json:"running"`

	TargetsVersion     int64  `json:"targets_version"`
	BackendClientState string `json:"backend_client_state"`
	HasError           bool   `json:"has_error"`
	Error              string `json:"error,omitempty"`

	ConfigStates      []models.ConfigState      `json:"config_states"`
	CachedTargetFiles []models.CachedTargetFile `json:"cached_target_files"`

	LastPollAt      time.Time `json:"last_poll_at,omitzero"`
	LastPollOutcome string    `json:"last_poll_outcome,omitempty"`
	// AvgPollSeconds is the moving average over the last polls.
	AvgPollSeconds float64 `json:"avg_poll_seconds"`
}

// Status returns a snapshot of the manager state.
func (m *SyncManager) Status() Status {
	running := m.scheduler.Running()

	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		ClientID:           m.identity.ClientID,
		RuntimeID:          m.identity.RuntimeID,
		Service:            m.identity.Service,
		Env:                m.identity.Env,
		AppVersion:         m.identity.AppVersion,
		Products:           slices.Clone(m.products),
		Capabilities:       m.capabilities.Base64(),
		Running:            running,
		TargetsVersion:     m.targetsVersion,
		BackendClientState: m.backendState,
		HasError:           m.hasError,
		Error:              m.errorMsg,
		ConfigStates:       m.applied.configStates(),
		CachedTargetFiles:  slices.Clone(m.cachedFiles),
		LastPollAt:         m.lastPollAt,
		LastPollOutcome:    m.lastPollOutcome,
		AvgPollSeconds:     m.pollDuration.Avg(),
	}
}
