// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the kernel's standard CBOR encoding
// configuration.
//
// Everything the kernel persists or frames is CBOR: trained
// compression dictionaries on disk, the headers of self-describing
// compressed frames, and tooling output that other programs consume.
// This package holds the one shared encoder/decoder configuration so
// that every package encodes identically without duplicating setup.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes, which is
// what lets a BLAKE3 digest over an encoded dictionary serve as its
// identity.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
