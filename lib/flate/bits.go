// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package flate

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// bitWriter packs bits MSB-first into a caller-provided byte slice.
// Overflow is reported, never grown past: the codec's capacity
// contract is the caller's buffer.
type bitWriter struct {
	dst         []byte
	pos         int
	accumulator uint64
	bitCount    uint
}

func newBitWriter(dst []byte) *bitWriter {
	return &bitWriter{dst: dst}
}

// writeBits appends the low `width` bits of value, most significant
// bit first. width must be ≤ 32.
func (w *bitWriter) writeBits(value uint32, width uint8) error {
	w.accumulator = w.accumulator<<width | uint64(value)&(1<<width-1)
	w.bitCount += uint(width)
	for w.bitCount >= 8 {
		if w.pos >= len(w.dst) {
			return fmt.Errorf("coded stream exceeds %d bytes: %w", len(w.dst), kerr.ErrOutputBufferTooSmall)
		}
		w.bitCount -= 8
		w.dst[w.pos] = byte(w.accumulator >> w.bitCount)
		w.pos++
	}
	return nil
}

// flush zero-pads the final partial byte, if any.
func (w *bitWriter) flush() error {
	if w.bitCount == 0 {
		return nil
	}
	if w.pos >= len(w.dst) {
		return fmt.Errorf("coded stream exceeds %d bytes: %w", len(w.dst), kerr.ErrOutputBufferTooSmall)
	}
	w.dst[w.pos] = byte(w.accumulator << (8 - w.bitCount))
	w.pos++
	w.accumulator = 0
	w.bitCount = 0
	return nil
}

// bitReader consumes bits MSB-first from a byte slice.
type bitReader struct {
	src    []byte
	pos    int
	bitPos uint8
}

func newBitReader(src []byte) *bitReader {
	return &bitReader{src: src}
}

// readBit returns the next bit.
func (r *bitReader) readBit() (uint8, error) {
	if r.pos >= len(r.src) {
		return 0, fmt.Errorf("coded stream truncated at byte %d: %w", r.pos, kerr.ErrUnexpectedEndOfStream)
	}
	bit := r.src[r.pos] >> (7 - r.bitPos) & 1
	r.bitPos++
	if r.bitPos == 8 {
		r.bitPos = 0
		r.pos++
	}
	return bit, nil
}

// readBits returns the next width bits as an MSB-first integer.
func (r *bitReader) readBits(width uint8) (uint32, error) {
	var value uint32
	for i := uint8(0); i < width; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		value = value<<1 | uint32(bit)
	}
	return value, nil
}
