// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ConfigResponse is the decoded body of a successful poll.
//
// Targets is the base64-encoded JSON envelope described by [Targets];
// encoding/json decodes the base64 into raw bytes for us. The same holds
// for [TargetFile.Raw].
type ConfigResponse struct {
	// ClientConfigs lists every path that should be in effect for this
	// client after the poll.
	ClientConfigs []string `json:"client_configs"`

	Targets     []byte       `json:"targets"`
	TargetFiles []TargetFile `json:"target_files"`
}

// IsEmpty reports whether the server answered with the "nothing changed"
// sentinel, i.e. an empty JSON object.
func (r ConfigResponse) IsEmpty() bool {
	return r.ClientConfigs == nil && r.Targets == nil && r.TargetFiles == nil
}

// TargetFile is one raw configuration payload keyed by its path.
type TargetFile struct {
	Path string `json:"path"`
	Raw  []byte `json:"raw"`
}

// Targets is the decoded targets envelope.
type Targets struct {
	Signed SignedTargets `json:"signed"`
}

// SignedTargets holds the snapshot version, per-path metadata and the
// opaque backend state token.
type SignedTargets struct {
	Version int64                 `json:"version"`
	Targets map[string]TargetMeta `json:"targets"`
	Custom  TargetsCustom         `json:"custom"`
}

// TargetsCustom carries server-defined extras of the envelope.
type TargetsCustom struct {
	OpaqueBackendState string `json:"opaque_backend_state"`
}

// TargetMeta describes a single path inside the snapshot.
type TargetMeta struct {
	Hashes map[string]string `json:"hashes"`
	Length int64             `json:"length"`
	Custom TargetMetaCustom  `json:"custom"`
}

// TargetMetaCustom carries the config version of a path.
type TargetMetaCustom struct {
	V int64 `json:"v"`
}
