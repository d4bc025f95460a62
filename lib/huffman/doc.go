// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package huffman implements a canonical Huffman entropy coder over
// byte symbols. It is used directly by the host boundary and as the
// final stage of the DEFLATE-style codec in lib/flate.
//
// Codes are canonical: after the usual greedy merge determines a
// code length for every symbol, codes are assigned in order of
// (length, symbol) by incrementing a running integer and
// left-shifting at each length increase. The table is therefore
// fully determined by its code lengths, so a serialized stream only
// needs to carry lengths — TableFromLengths reconstructs the exact
// encoder table on the other side.
//
// The bitstream is MSB-first within each byte: the first bit of a
// codeword occupies the highest unused bit of the current output
// byte. Code lengths are capped at MaxCodeLength; histograms skewed
// enough to exceed it are flattened and retried, trading a fraction
// of a bit per symbol for a bounded decoder table.
package huffman
