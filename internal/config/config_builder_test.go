// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuild_MergesMultipleConfigs(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "1.0.0"}},
		&StructuredConfig{App: App{Service: "checkout"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "checkout", cfg.App.Service)
}

func TestBuild_LaterConfigWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "from-json"}, Workers: Workers{PollInterval: time.Second}},
		&StructuredConfig{App: App{Version: "from-flags"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "from-flags", cfg.App.Version)
	assert.Equal(t, time.Second, cfg.Workers.PollInterval, "zero fields do not override")
}

// ── withEnv ───────────────────────────────────────────────────────────────────

func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
}

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_VERSION", "env-version")
	t.Setenv("APP_SERVICE", "env-service")

	b := newConfigBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, "env-service", b.configs[0].App.Service)
}

func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "forever")

	b := newConfigBuilder()
	b.withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

func TestWithFlags_NilIsNoOp(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withFlags(nil))
	assert.Empty(t, b.configs)
}

func TestWithFlags_AppendsParsedFlags(t *testing.T) {
	fs, flags := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--service", "flag-service"}))

	b := newConfigBuilder()
	b.withFlags(flags)

	require.Len(t, b.configs, 1)
	assert.Equal(t, "flag-service", b.configs[0].App.Service)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	assert.Same(t, b, b.withJSON())

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithJSON_PrependsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.App.Version = "json-version"
	payload.App.Service = "json-service"
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path, App: App{Version: "env-version"}})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-version", b.configs[0].App.Version)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "env-version", cfg.App.Version, "env overrides json")
	assert.Equal(t, "json-service", cfg.App.Service)
}

func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		JSONFilePath: "/nonexistent/config.json",
	})
	b.withJSON()

	assert.Error(t, b.err)
}

// ── GetStructuredConfig ──────────────────────────────────────────────────────

func TestGetStructuredConfig_AppliesDefaults(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_SERVICE":     "checkout",
		"ADAPTER_ADDRESS": "http://localhost:8126",
	})

	cfg, err := GetStructuredConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfigPath, cfg.Adapter.Path)
	assert.Equal(t, DefaultRequestTimeout, cfg.Adapter.RequestTimeout)
	assert.Equal(t, DefaultPollInterval, cfg.Workers.PollInterval)
	assert.Equal(t, DefaultAckTimeout, cfg.Workers.AckTimeout)
}

func TestGetStructuredConfig_FlagsOverrideEnv(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_SERVICE":           "env-service",
		"ADAPTER_ADDRESS":       "http://localhost:8126",
		"WORKERS_POLL_INTERVAL": "10s",
	})

	fs, flags := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--service", "flag-service", "--products", "ASM,ASM_DD"}))

	cfg, err := GetStructuredConfig(flags)
	require.NoError(t, err)

	assert.Equal(t, "flag-service", cfg.App.Service)
	assert.Equal(t, 10*time.Second, cfg.Workers.PollInterval)
	assert.Equal(t, []string{"ASM", "ASM_DD"}, cfg.RemoteConfig.Products)
}

func TestGetStructuredConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing service",
			env:     map[string]string{"ADAPTER_ADDRESS": "http://localhost:8126"},
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name:    "missing agent address",
			env:     map[string]string{"APP_SERVICE": "checkout"},
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name: "negative retry window",
			env: map[string]string{
				"APP_SERVICE":          "checkout",
				"ADAPTER_ADDRESS":      "http://localhost:8126",
				"ADAPTER_RETRY_WINDOW": "-1s",
			},
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name: "negative poll interval",
			env: map[string]string{
				"APP_SERVICE":           "checkout",
				"ADAPTER_ADDRESS":       "http://localhost:8126",
				"WORKERS_POLL_INTERVAL": "-5s",
			},
			wantErr: ErrInvalidWorkerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvVars(t, tt.env)

			_, err := GetStructuredConfig(nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
