// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport used to exchange client state for
// configuration with the control plane.
//
// The primary abstraction is [ConfigClient], which decouples the sync
// manager from the underlying protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPConfigClient]) built on resty with bounded
// exponential-backoff retries.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for 404, which means the endpoint has
// remote configuration disabled).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-remote-config/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/config_client_mock.go -package=mock

// ConfigClient performs one poll exchange with the control plane.
type ConfigClient interface {
	// FetchConfigs sends the current client state and returns the decoded
	// response. An empty or "{}" body yields a response for which
	// [models.ConfigResponse.IsEmpty] is true. A 404 is reported as a
	// wrapped [ErrNotFound]; any other failure aborts the exchange with a
	// non-nil error.
	FetchConfigs(ctx context.Context, req models.ConfigRequest) (models.ConfigResponse, error)
}
