package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-remote-config/internal/adapter"
	"github.com/MKhiriev/go-remote-config/internal/metrics"
	"github.com/MKhiriev/go-remote-config/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pollSpanName = "remote_config.poll"

// Poll runs one poll cycle: it reports the current client state, reconciles
// the applied table with the response and dispatches the diff. It is what the
// poll loop runs on every tick and may be called directly.
//
// A 404 answer means remote configuration is disabled on the endpoint and is
// not an error. Transport errors are returned without touching any state.
// Parse errors are returned and reported to the control plane on the next
// poll.
//
// Cycles never overlap: a call made while another cycle is in flight waits
// for it. Handlers must therefore not call Poll.
func (m *SyncManager) Poll(ctx context.Context) error {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	started := time.Now()
	ctx, span := m.tracer.Start(ctx, pollSpanName)
	defer span.End()

	req := m.buildRequest()
	span.SetAttributes(
		attribute.Int64("remote_config.targets_version", req.Client.State.TargetsVersion),
		attribute.StringSlice("remote_config.products", req.Client.Products),
		attribute.Int("remote_config.config_states", len(req.Client.State.ConfigStates)),
		attribute.Bool("remote_config.has_error", req.Client.State.HasError),
	)

	resp, err := m.client.FetchConfigs(ctx, req)
	switch {
	case errors.Is(err, adapter.ErrNotFound):
		m.logger.Debug().Msg("remote configuration is disabled on the endpoint")
		m.finishPoll(span, metrics.OutcomeDisabled, started, nil)
		return nil
	case errors.Is(err, adapter.ErrMalformedResponse):
		m.clearReportedError(req)
		m.recordParseError(err)
		m.finishPoll(span, metrics.OutcomeParseError, started, err)
		return err
	case err != nil:
		m.logger.Warn().Err(err).Msg("config request failed, skipping cycle")
		err = fmt.Errorf("fetch configs: %w", err)
		m.finishPoll(span, metrics.OutcomeTransportError, started, err)
		return err
	}

	m.clearReportedError(req)

	if resp.IsEmpty() {
		m.finishPoll(span, metrics.OutcomeUpToDate, started, nil)
		return nil
	}

	if err = m.parseConfig(resp); err != nil {
		m.recordParseError(err)
		m.finishPoll(span, metrics.OutcomeParseError, started, err)
		return err
	}

	m.finishPoll(span, metrics.OutcomeApplied, started, nil)
	return nil
}

// buildRequest snapshots the client state. Config states are rebuilt from the
// applied table on every call.
func (m *SyncManager) buildRequest() models.ConfigRequest {
	m.mu.Lock()
	expired := m.applied.expire(m.now(), m.ackTimeout)
	state := models.ClientState{
		RootVersion:        rootVersion,
		TargetsVersion:     m.targetsVersion,
		ConfigStates:       m.applied.configStates(),
		HasError:           m.hasError,
		Error:              m.errorMsg,
		BackendClientState: m.backendState,
	}
	products := slices.Clone(m.products)
	capabilities := m.capabilities.Base64()
	cached := slices.Clone(m.cachedFiles)
	if len(expired) > 0 {
		m.publishAppliedLocked()
	}
	m.mu.Unlock()

	for _, row := range expired {
		m.logger.Warn().
			Str("product", row.product).
			Str("path", row.path).
			Msg("config was not acknowledged in time")
		m.metrics.IncHandlerError(row.product)
	}

	return models.ConfigRequest{
		Client: models.Client{
			State:    state,
			ID:       m.identity.ClientID,
			Products: products,
			IsTracer: true,
			ClientTracer: models.ClientTracer{
				RuntimeID:     m.identity.RuntimeID,
				Language:      m.identity.Language,
				TracerVersion: m.identity.ClientVersion,
				Service:       m.identity.Service,
				Env:           m.identity.Env,
				AppVersion:    m.identity.AppVersion,
				ExtraServices: nonNil(m.identity.ExtraServices),
				Tags:          nonNil(m.identity.Tags),
			},
			Capabilities: capabilities,
		},
		CachedTargetFiles: cached,
	}
}

// clearReportedError drops the error flag once it has reached the control
// plane.
func (m *SyncManager) clearReportedError(sent models.ConfigRequest) {
	if !sent.Client.State.HasError {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasError = false
	m.errorMsg = ""
}

func (m *SyncManager) recordParseError(err error) {
	m.logger.Error().Err(err).Msg("failed to apply config response")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasError = true
	m.errorMsg = err.Error()
}

func (m *SyncManager) finishPoll(span trace.Span, outcome string, started time.Time, err error) {
	took := time.Since(started)

	m.mu.Lock()
	m.lastPollAt = m.now()
	m.lastPollOutcome = outcome
	m.pollDuration.Add(took.Seconds())
	m.mu.Unlock()

	m.metrics.ObservePoll(outcome, took)

	span.SetAttributes(attribute.String("remote_config.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// publishAppliedLocked pushes the per-state row counts to the gauge. m.mu must
// be held.
func (m *SyncManager) publishAppliedLocked() {
	m.metrics.SetApplied(m.applied.stateCounts())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
