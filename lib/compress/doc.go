// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress is the codec selection and framing layer.
//
// The kernel carries several compressors with different trade-offs:
// the in-tree DEFLATE-style codec (lib/flate), trained-dictionary
// compression (lib/dict), raw Huffman coding (lib/huffman), and
// adapters over LZ4 and Zstandard. This package gives them a common
// identity (Codec tags), a probe that predicts which one will pay off
// (Analyze/Select), a self-describing frame format for persisted
// payloads, and the strip-parallel compression path for large
// rasters.
//
// Frames are CBOR headers (lib/codec) carrying the codec tag, the
// uncompressed size, and a keyed BLAKE3 digest of the original bytes;
// DecodeFrame refuses payloads whose digest does not match, so
// corruption is detected before corrupt pixels reach a caller.
package compress
