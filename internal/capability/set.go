// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package capability implements the growable bit vector a client uses to
// advertise optional protocol features to the control plane.
//
// Each capability is addressed by its bit index. Setting or clearing one bit
// never touches any other bit, and the vector grows on demand so indices
// beyond 64 are supported. On the wire the vector is the base64 encoding of
// its minimal big-endian byte representation.
package capability

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Set is a variable-width bit vector. The zero value is an empty set ready
// for use. Set is not safe for concurrent use; owners guard it themselves.
type Set struct {
	// bits is stored little-endian by byte: bit i lives in bits[i/8] at
	// position i%8.
	bits []byte
}

// Update sets bit to 1 when enabled is true and clears it otherwise.
func (s *Set) Update(bit uint, enabled bool) {
	if enabled {
		s.Set(bit)
		return
	}
	s.Clear(bit)
}

// Set turns bit on, growing the vector if needed.
func (s *Set) Set(bit uint) {
	idx := int(bit / 8)
	if idx >= len(s.bits) {
		grown := make([]byte, idx+1)
		copy(grown, s.bits)
		s.bits = grown
	}
	s.bits[idx] |= 1 << (bit % 8)
}

// Clear turns bit off. Clearing a bit beyond the current width is a no-op.
func (s *Set) Clear(bit uint) {
	idx := int(bit / 8)
	if idx >= len(s.bits) {
		return
	}
	s.bits[idx] &^= 1 << (bit % 8)
}

// Has reports whether bit is on.
func (s *Set) Has(bit uint) bool {
	idx := int(bit / 8)
	if idx >= len(s.bits) {
		return false
	}
	return s.bits[idx]&(1<<(bit%8)) != 0
}

// Bytes returns the minimal big-endian representation of the vector. An
// empty vector encodes as a single zero byte.
func (s *Set) Bytes() []byte {
	top := len(s.bits) - 1
	for top >= 0 && s.bits[top] == 0 {
		top--
	}
	if top < 0 {
		return []byte{0}
	}

	out := make([]byte, top+1)
	for i := 0; i <= top; i++ {
		out[top-i] = s.bits[i]
	}
	return out
}

// Base64 returns the wire encoding of the vector.
func (s *Set) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

// String renders the vector as a binary string, most significant bit first.
func (s *Set) String() string {
	raw := s.Bytes()

	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(raw[0]), 2))
	for _, b := range raw[1:] {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// FromBase64 decodes a wire-encoded vector.
func FromBase64(encoded string) (Set, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Set{}, err
	}

	bits := make([]byte, len(raw))
	for i, b := range raw {
		bits[len(raw)-1-i] = b
	}
	return Set{bits: bits}, nil
}
