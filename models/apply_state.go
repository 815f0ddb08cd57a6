// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ApplyState is the per-config acknowledgement status reported back to the
// control plane in [ConfigState.ApplyState]. The numeric values are part of
// the wire protocol.
type ApplyState int

const (
	// ApplyStateUnknown is the zero value and is never sent.
	ApplyStateUnknown ApplyState = iota
	// ApplyStateUnacknowledged means the config was dispatched but its
	// consumer has not reported an outcome yet.
	ApplyStateUnacknowledged
	// ApplyStateAcknowledged means the consumer applied the config.
	ApplyStateAcknowledged
	// ApplyStateError means the consumer rejected the config; the reason is
	// carried in [ConfigState.ApplyError].
	ApplyStateError
)

// String returns a lower-case label suitable for logs and metric labels.
func (s ApplyState) String() string {
	switch s {
	case ApplyStateUnacknowledged:
		return "unacknowledged"
	case ApplyStateAcknowledged:
		return "acknowledged"
	case ApplyStateError:
		return "error"
	default:
		return "unknown"
	}
}
