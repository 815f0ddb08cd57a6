package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid transport settings
	// (for example, missing agent address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidAppConfigs indicates missing service metadata.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidWorkerConfigs indicates invalid poll loop settings
	// (for example, a negative poll interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")

	// ErrInvalidAddress is returned by [NetAddress.Set] for a malformed
	// "host:port" value.
	ErrInvalidAddress = errors.New("invalid address")
)
