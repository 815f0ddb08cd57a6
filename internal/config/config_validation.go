// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "net/url"

// validate checks that the final merged [StructuredConfig] is usable by the
// client. It runs after defaults have been applied.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.Service == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 || cfg.Adapter.RetryWindow < 0 {
		return ErrInvalidAdapterConfigs
	}
	if _, err := url.Parse(cfg.Adapter.HTTPAddress); err != nil {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.PollInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
