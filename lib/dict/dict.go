// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package dict

import (
	"encoding/binary"
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

const (
	// gramSize is the n-gram width used for hash lookups. Four bytes
	// balances match-anchor density against spurious collisions.
	gramSize = 4

	// copyMinLength is the shortest copy worth a token: a copy token
	// costs four bytes (control + 24-bit offset), so shorter matches
	// are emitted as literals.
	copyMinLength = 5

	// copyMaxLength is the longest single copy (seven length bits).
	copyMaxLength = copyMinLength + 0x7F

	// literalRunMax is the longest single literal run (control byte
	// values 0x00..0x7F encode runs of 1..128).
	literalRunMax = 128

	// MaxDictionarySize bounds trained dictionaries. Copy tokens
	// carry 24-bit offsets, so the dictionary must stay addressable
	// within them.
	MaxDictionarySize = 1 << 24

	// DefaultHashBits sizes the n-gram table at 1<<16 buckets.
	DefaultHashBits = 16
)

// Dictionary is a trained match table over a fixed byte sequence.
// Immutable after Train; safe for concurrent readers.
type Dictionary struct {
	data     []byte
	hashBits uint
	// table maps an n-gram hash to the most recent offset of that
	// n-gram in data, or -1 when the bucket is empty.
	table []int32
}

// Train builds a dictionary from a corpus. When the corpus exceeds
// maxSize, only its most recent maxSize bytes are retained — older
// corpus content is evicted rather than growing the dictionary
// unbounded. hashBits sizes the n-gram table (8..24); zero selects
// DefaultHashBits.
func Train(corpus []byte, maxSize, hashBits int) (*Dictionary, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("training corpus: %w", kerr.ErrEmptyInput)
	}
	if maxSize <= 0 || maxSize > MaxDictionarySize {
		return nil, fmt.Errorf("dictionary size %d outside 1..%d: %w",
			maxSize, MaxDictionarySize, kerr.ErrInvalidParameter)
	}
	if hashBits == 0 {
		hashBits = DefaultHashBits
	}
	if hashBits < 8 || hashBits > 24 {
		return nil, fmt.Errorf("hash bits %d outside 8..24: %w", hashBits, kerr.ErrInvalidParameter)
	}

	retained := corpus
	if len(retained) > maxSize {
		retained = retained[len(retained)-maxSize:]
	}
	data := make([]byte, len(retained))
	copy(data, retained)

	d := &Dictionary{data: data, hashBits: uint(hashBits)}
	d.buildTable()
	return d, nil
}

// buildTable indexes every n-gram of data, later offsets overwriting
// earlier ones so lookups land on the most recent occurrence.
func (d *Dictionary) buildTable() {
	d.table = make([]int32, 1<<d.hashBits)
	for i := range d.table {
		d.table[i] = -1
	}
	for offset := 0; offset+gramSize <= len(d.data); offset++ {
		d.table[d.hash(d.data[offset:])] = int32(offset)
	}
}

func (d *Dictionary) hash(gram []byte) uint32 {
	sequence := binary.LittleEndian.Uint32(gram)
	return sequence * 2654435761 >> (32 - d.hashBits)
}

// Size returns the trained dictionary's byte length.
func (d *Dictionary) Size() int { return len(d.data) }

// Bound returns a dst capacity guaranteed to hold the compression of
// n input bytes: all-literal output plus one control byte per run.
func Bound(n int) int {
	return n + (n+literalRunMax-1)/literalRunMax + 1
}

// Compress encodes input against the dictionary into dst and returns
// the bytes written. Input n-grams are matched against the trained
// dictionary only, never against earlier input.
func (d *Dictionary) Compress(input, dst []byte) (int, error) {
	pos := 0
	out := 0
	literalStart := 0

	flushLiterals := func(end int) error {
		for literalStart < end {
			run := end - literalStart
			if run > literalRunMax {
				run = literalRunMax
			}
			if out+1+run > len(dst) {
				return fmt.Errorf("output capacity %d exhausted: %w", len(dst), kerr.ErrOutputBufferTooSmall)
			}
			dst[out] = byte(run - 1)
			copy(dst[out+1:], input[literalStart:literalStart+run])
			out += 1 + run
			literalStart += run
		}
		return nil
	}

	for pos < len(input) {
		if pos+gramSize > len(input) {
			pos++
			continue
		}
		candidate := d.table[d.hash(input[pos:])]
		if candidate < 0 {
			pos++
			continue
		}
		length := d.matchLength(input[pos:], int(candidate))
		if length < copyMinLength {
			pos++
			continue
		}

		if err := flushLiterals(pos); err != nil {
			return 0, err
		}
		if out+4 > len(dst) {
			return 0, fmt.Errorf("output capacity %d exhausted: %w", len(dst), kerr.ErrOutputBufferTooSmall)
		}
		dst[out] = 0x80 | byte(length-copyMinLength)
		dst[out+1] = byte(candidate)
		dst[out+2] = byte(candidate >> 8)
		dst[out+3] = byte(candidate >> 16)
		out += 4
		pos += length
		literalStart = pos
	}

	if err := flushLiterals(len(input)); err != nil {
		return 0, err
	}
	return out, nil
}

// matchLength returns how many bytes of input match the dictionary
// starting at offset, capped at copyMaxLength.
func (d *Dictionary) matchLength(input []byte, offset int) int {
	limit := len(input)
	if avail := len(d.data) - offset; avail < limit {
		limit = avail
	}
	if limit > copyMaxLength {
		limit = copyMaxLength
	}
	n := 0
	for n < limit && input[n] == d.data[offset+n] {
		n++
	}
	return n
}

// Decompress decodes a stream produced by Compress against the same
// dictionary and returns the bytes written. Copy tokens referencing
// bytes outside the dictionary fail with kerr.ErrInvalidCode.
func (d *Dictionary) Decompress(input, dst []byte) (int, error) {
	pos := 0
	out := 0
	for pos < len(input) {
		control := input[pos]
		pos++

		if control < 0x80 {
			run := int(control) + 1
			if pos+run > len(input) {
				return 0, fmt.Errorf("literal run of %d bytes truncated: %w", run, kerr.ErrUnexpectedEndOfStream)
			}
			if out+run > len(dst) {
				return 0, fmt.Errorf("output capacity %d exhausted: %w", len(dst), kerr.ErrOutputBufferTooSmall)
			}
			copy(dst[out:], input[pos:pos+run])
			pos += run
			out += run
			continue
		}

		if pos+3 > len(input) {
			return 0, fmt.Errorf("copy token truncated: %w", kerr.ErrUnexpectedEndOfStream)
		}
		length := int(control&0x7F) + copyMinLength
		offset := int(input[pos]) | int(input[pos+1])<<8 | int(input[pos+2])<<16
		pos += 3

		if offset+length > len(d.data) {
			return 0, fmt.Errorf("copy of %d bytes at dictionary offset %d exceeds size %d: %w",
				length, offset, len(d.data), kerr.ErrInvalidCode)
		}
		if out+length > len(dst) {
			return 0, fmt.Errorf("output capacity %d exhausted: %w", len(dst), kerr.ErrOutputBufferTooSmall)
		}
		copy(dst[out:], d.data[offset:offset+length])
		out += length
	}
	return out, nil
}
