// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Default values applied by [StructuredConfig.applyDefaults] to fields left
// empty by every source.
const (
	DefaultConfigPath     = "/v0.7/config"
	DefaultRequestTimeout = 5 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultAckTimeout     = time.Minute
)

// StructuredConfig is the top-level configuration container of the remote
// configuration client. It is populated by merging values from an optional
// JSON file, environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the service metadata reported in the client identity.
	App App `envPrefix:"APP_"`

	// Adapter holds the control plane transport settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the poll loop pacing settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Server holds the local status server settings.
	Server Server `envPrefix:"SERVER_"`

	// RemoteConfig holds the subscription settings.
	RemoteConfig RemoteConfig `envPrefix:"RC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds the static service metadata advertised to the control plane.
type App struct {
	// Service is the name of the service embedding the client.
	// Env: APP_SERVICE
	Service string `env:"SERVICE"`

	// Env is the deployment environment (e.g. "prod", "staging").
	// Env: APP_ENV
	Env string `env:"ENV"`

	// Version is the version of the embedding service.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// Tags are extra "key:value" tags reported with the identity.
	// Env: APP_TAGS (comma separated)
	Tags []string `env:"TAGS" envSeparator:","`
}

// Adapter holds the settings of the control plane transport.
type Adapter struct {
	// HTTPAddress is the base URL of the agent serving the config endpoint
	// (e.g. "http://localhost:8126").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Path is the config endpoint path. Defaults to [DefaultConfigPath].
	// Env: ADAPTER_PATH
	Path string `env:"PATH"`

	// RequestTimeout bounds a single poll request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RetryWindow is how long a failed poll request is retried with
	// exponential backoff before the cycle is given up. Zero disables
	// retries.
	// Env: ADAPTER_RETRY_WINDOW
	RetryWindow time.Duration `env:"RETRY_WINDOW"`

	// APIKey is sent in the DD-API-KEY header when non-empty.
	// Env: ADAPTER_API_KEY
	APIKey string `env:"API_KEY"`
}

// Workers holds the pacing of the poll loop.
type Workers struct {
	// PollInterval is the delay between the end of one poll and the start
	// of the next.
	// Env: WORKERS_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// AckTimeout is how long a dispatched config may stay unacknowledged
	// before it is reported as failed. Negative disables the limit.
	// Env: WORKERS_ACK_TIMEOUT
	AckTimeout time.Duration `env:"ACK_TIMEOUT"`
}

// Server holds the local status server settings.
type Server struct {
	// HTTPAddress is the "host:port" the status server listens on. Empty
	// disables the status server.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// RemoteConfig holds the subscription settings.
type RemoteConfig struct {
	// Products are subscribed at startup.
	// Env: RC_PRODUCTS (comma separated)
	Products []string `env:"PRODUCTS" envSeparator:","`
}

// GetStructuredConfig loads, merges, defaults and validates the configuration
// from all available sources in the following priority order (later sources
// override earlier non-zero fields):
//  1. JSON file (path resolved from env and flags)
//  2. Environment variables
//  3. Command-line flags registered with [RegisterFlags]
//
// flags may be nil when no command line is involved.
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, cfg.validate()
}

// NewFlagSet is a convenience for callers outside cobra.
func NewFlagSet(name string) (*pflag.FlagSet, *Flags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	return fs, RegisterFlags(fs)
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Adapter.Path == "" {
		cfg.Adapter.Path = DefaultConfigPath
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.PollInterval == 0 {
		cfg.Workers.PollInterval = DefaultPollInterval
	}
	if cfg.Workers.AckTimeout == 0 {
		cfg.Workers.AckTimeout = DefaultAckTimeout
	}
}
