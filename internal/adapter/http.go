package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-remote-config/internal/config"
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const apiKeyHeader = "DD-API-KEY"

type httpConfigClient struct {
	client *resty.Client

	path        string
	apiKey      string
	retryWindow time.Duration

	logger *logger.Logger
}

// NewHTTPConfigClient constructs an HTTP/JSON implementation of
// [ConfigClient]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying resty client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPConfigClient(adapterCfg config.Adapter, logger *logger.Logger) (ConfigClient, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	path := adapterCfg.Path
	if path == "" {
		path = config.DefaultConfigPath
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpConfigClient{
		client:      client,
		path:        path,
		apiKey:      strings.TrimSpace(adapterCfg.APIKey),
		retryWindow: adapterCfg.RetryWindow,
		logger:      logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchConfigs implements [ConfigClient]. It POSTs req to the config
// endpoint. Network failures and 5xx/429 answers are retried with
// exponential backoff for at most the configured retry window; every other
// non-2xx status fails immediately.
func (h *httpConfigClient) FetchConfigs(ctx context.Context, req models.ConfigRequest) (models.ConfigResponse, error) {
	attempt := func() (models.ConfigResponse, error) {
		resp, err := h.request(ctx).
			SetBody(req).
			Post(h.path)
		if err != nil {
			if ctx.Err() != nil {
				return models.ConfigResponse{}, backoff.Permanent(fmt.Errorf("config request: %w", err))
			}
			return models.ConfigResponse{}, fmt.Errorf("config request: %w", err)
		}
		if err = mapHTTPError(resp); err != nil {
			if isRetryable(resp.StatusCode()) {
				return models.ConfigResponse{}, err
			}
			return models.ConfigResponse{}, backoff.Permanent(err)
		}

		return decodeConfigResponse(resp.Body())
	}

	return backoff.RetryNotifyWithData(attempt, h.newBackOff(ctx), func(err error, next time.Duration) {
		h.logger.Debug().Err(err).Dur("retry_in", next).Msg("config request failed, retrying")
	})
}

func (h *httpConfigClient) newBackOff(ctx context.Context) backoff.BackOff {
	if h.retryWindow <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	return backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(100*time.Millisecond),
		backoff.WithMaxInterval(time.Second),
		backoff.WithMaxElapsedTime(h.retryWindow),
	), ctx)
}

func (h *httpConfigClient) request(ctx context.Context) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if h.apiKey != "" {
		req.SetHeader(apiKeyHeader, h.apiKey)
	}
	return req
}

func decodeConfigResponse(body []byte) (models.ConfigResponse, error) {
	var resp models.ConfigResponse
	if len(strings.TrimSpace(string(body))) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return models.ConfigResponse{}, backoff.Permanent(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}
	return resp, nil
}
