// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Encode writes the Huffman coding of input into dst using the given
// table and returns the number of bytes written. The final partial
// byte, if any, is zero-padded; decoders stop at their requested
// output length and never interpret the padding.
//
// Fails with kerr.ErrInvalidParameter if input contains a symbol the
// table assigns no code, and kerr.ErrOutputBufferTooSmall if dst
// cannot hold the coded stream.
func Encode(input []byte, table *Table, dst []byte) (int, error) {
	if table.AlphabetSize() > MaxSymbols {
		return 0, fmt.Errorf("byte encoding over a %d-symbol alphabet: %w",
			table.AlphabetSize(), kerr.ErrInvalidParameter)
	}
	var accumulator uint64
	var bitCount uint
	written := 0

	for _, symbol := range input {
		entry := table.entries[symbol]
		if entry.Length == 0 {
			return 0, fmt.Errorf("symbol %d has no code in this table: %w", symbol, kerr.ErrInvalidParameter)
		}

		accumulator = accumulator<<entry.Length | uint64(entry.Code)
		bitCount += uint(entry.Length)

		for bitCount >= 8 {
			if written >= len(dst) {
				return 0, fmt.Errorf("huffman output exceeds %d bytes: %w", len(dst), kerr.ErrOutputBufferTooSmall)
			}
			bitCount -= 8
			dst[written] = byte(accumulator >> bitCount)
			written++
		}
	}

	if bitCount > 0 {
		if written >= len(dst) {
			return 0, fmt.Errorf("huffman output exceeds %d bytes: %w", len(dst), kerr.ErrOutputBufferTooSmall)
		}
		dst[written] = byte(accumulator << (8 - bitCount))
		written++
	}
	return written, nil
}

// Decode reads outputLen symbols from the coded input into dst,
// walking codewords MSB-first, and returns the number of bytes
// written (always outputLen on success).
//
// Fails with kerr.ErrOutputBufferTooSmall if dst is shorter than
// outputLen, kerr.ErrInvalidCode if the accumulated bits match no
// codeword of any length, and kerr.ErrUnexpectedEndOfStream if input
// is exhausted mid-codeword.
func Decode(input []byte, table *Table, dst []byte, outputLen int) (int, error) {
	if table.AlphabetSize() > MaxSymbols {
		return 0, fmt.Errorf("byte decoding over a %d-symbol alphabet: %w",
			table.AlphabetSize(), kerr.ErrInvalidParameter)
	}
	if outputLen < 0 {
		return 0, fmt.Errorf("output length %d: %w", outputLen, kerr.ErrInvalidParameter)
	}
	if len(dst) < outputLen {
		return 0, fmt.Errorf("destination holds %d bytes, need %d: %w",
			len(dst), outputLen, kerr.ErrOutputBufferTooSmall)
	}

	var code uint32
	var codeLength uint8
	inputPos := 0
	bitPos := 0 // next bit within input[inputPos], MSB first
	written := 0

	for written < outputLen {
		if inputPos >= len(input) {
			return written, fmt.Errorf("input ended after %d of %d symbols: %w",
				written, outputLen, kerr.ErrUnexpectedEndOfStream)
		}

		bit := input[inputPos] >> (7 - bitPos) & 1
		bitPos++
		if bitPos == 8 {
			bitPos = 0
			inputPos++
		}

		code = code<<1 | uint32(bit)
		codeLength++

		// Canonical lookup: a code of this length is valid iff it
		// falls in [firstCode, firstCode+count) for that length.
		if count := table.count[codeLength]; count > 0 {
			first := table.firstCode[codeLength]
			if code >= first && code-first < uint32(count) {
				dst[written] = byte(table.ordered[uint32(table.offset[codeLength])+code-first])
				written++
				code = 0
				codeLength = 0
				continue
			}
		}
		if codeLength >= table.maxLength {
			return written, fmt.Errorf("no codeword matches %0*b: %w", int(codeLength), code, kerr.ErrInvalidCode)
		}
	}
	return written, nil
}

// EncodedBound returns a capacity guaranteed to hold the encoding of
// inputLen symbols with this table: every symbol costs at most
// MaxLength bits.
func (t *Table) EncodedBound(inputLen int) int {
	return (inputLen*int(t.maxLength) + 7) / 8
}

// Walker decodes one codeword bit by bit. It exists for callers that
// interleave Huffman codewords with raw bits in the same stream (the
// DEFLATE-style codec reads extra length/distance bits between
// codewords), so they own the bit reader and feed bits in.
type Walker struct {
	table  *Table
	code   uint32
	length uint8
}

// NewWalker returns a Walker over the given table.
func NewWalker(table *Table) Walker {
	return Walker{table: table}
}

// Step consumes one bit (0 or 1). When the accumulated bits complete
// a codeword it returns (symbol, true, nil) and resets for the next
// codeword. Fails with kerr.ErrInvalidCode when the accumulated bits
// can no longer match any codeword.
func (w *Walker) Step(bit uint8) (uint16, bool, error) {
	w.code = w.code<<1 | uint32(bit&1)
	w.length++

	if count := w.table.count[w.length]; count > 0 {
		first := w.table.firstCode[w.length]
		if w.code >= first && w.code-first < uint32(count) {
			symbol := w.table.ordered[uint32(w.table.offset[w.length])+w.code-first]
			w.code = 0
			w.length = 0
			return symbol, true, nil
		}
	}
	if w.length >= w.table.maxLength {
		return 0, false, fmt.Errorf("no codeword matches %0*b: %w", int(w.length), w.code, kerr.ErrInvalidCode)
	}
	return 0, false, nil
}
