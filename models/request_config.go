// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ConfigRequest is the body POSTed to the control plane on every poll.
// It carries the client identity, the subscribed products and a summary of
// everything currently applied so the server can compute what changed.
type ConfigRequest struct {
	// Client describes who is asking and what it already has.
	Client Client `json:"client"`

	// CachedTargetFiles lists the files the client already holds so the
	// server can skip resending unchanged payloads.
	CachedTargetFiles []CachedTargetFile `json:"cached_target_files"`
}

// Client is the identity and state section of [ConfigRequest].
type Client struct {
	State ClientState `json:"state"`

	// ID is the random per-process client id.
	ID string `json:"id"`

	// Products is the list of product names the client subscribes to.
	Products []string `json:"products"`

	IsTracer     bool         `json:"is_tracer"`
	ClientTracer ClientTracer `json:"client_tracer"`

	// Capabilities is the base64 encoding of the big-endian capability
	// bit vector.
	Capabilities string `json:"capabilities"`
}

// ClientTracer holds the static runtime and service metadata of the client.
type ClientTracer struct {
	RuntimeID     string   `json:"runtime_id"`
	Language      string   `json:"language"`
	TracerVersion string   `json:"tracer_version"`
	Service       string   `json:"service"`
	Env           string   `json:"env"`
	AppVersion    string   `json:"app_version"`
	ExtraServices []string `json:"extra_services"`
	Tags          []string `json:"tags"`
}

// ClientState reports what the client last saw and how applying it went.
type ClientState struct {
	RootVersion    int64 `json:"root_version"`
	TargetsVersion int64 `json:"targets_version"`

	// ConfigStates is rebuilt from the applied table on every request.
	ConfigStates []ConfigState `json:"config_states"`

	// HasError and Error are set only when the previous response could not
	// be parsed.
	HasError bool   `json:"has_error"`
	Error    string `json:"error"`

	// BackendClientState is the opaque token echoed back from the last
	// targets snapshot.
	BackendClientState string `json:"backend_client_state"`
}

// ConfigState is the per-config acknowledgement entry of [ClientState].
type ConfigState struct {
	ID         string     `json:"id"`
	Version    int64      `json:"version"`
	Product    string     `json:"product"`
	ApplyState ApplyState `json:"apply_state"`
	ApplyError string     `json:"apply_error,omitempty"`
}

// CachedTargetFile summarises one applied file by path, length and hashes.
type CachedTargetFile struct {
	Path   string       `json:"path"`
	Length int64        `json:"length"`
	Hashes []TargetHash `json:"hashes"`
}

// TargetHash is one algorithm/digest pair of a [CachedTargetFile].
type TargetHash struct {
	Algorithm string `json:"algorithm"`
	Hash      string `json:"hash"`
}
