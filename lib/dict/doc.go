// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package dict implements trained-dictionary compression.
//
// A Dictionary is built once by Train from a representative corpus
// and is immutable afterwards: compression looks up 4-byte n-grams of
// the current input against the trained dictionary, not against the
// input itself. This is the codec of choice when many small,
// structurally similar inputs (a folder of icons, a batch of UI
// sprites) are processed in sequence — the dictionary amortizes
// shared-pattern cost across calls where a sliding-window codec would
// rediscover the patterns in every call.
//
// The compressed stream is a byte-oriented token sequence. A control
// byte below 0x80 introduces a literal run of control+1 bytes; a
// control byte at or above 0x80 is a copy token whose low seven bits
// encode the copy length and which is followed by a 24-bit
// little-endian offset into the dictionary. Offsets are validated on
// decompression, so a corrupt stream fails with kerr.ErrInvalidCode
// rather than reading out of bounds.
//
// Dictionaries persist as deterministic CBOR (lib/codec) carrying a
// keyed BLAKE3 digest of the trained bytes; LoadDictionary verifies
// the digest before rebuilding the n-gram table.
package dict
