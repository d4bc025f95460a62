// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package kerr

import "errors"

// Sentinel errors for every failure mode the kernel reports. These
// are protocol constants of a sort: the engine boundary translates
// them into result structs, and tests assert on them with errors.Is.
var (
	// ErrOutOfMemory indicates an arena or backing region could not
	// satisfy an allocation. Recoverable only by freeing or resetting.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrInvalidPointer indicates a stale, foreign, or out-of-range
	// allocation handle. This is a caller contract violation — the
	// job that produced it must be abandoned.
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrOutputBufferTooSmall indicates the caller-supplied output
	// capacity is insufficient. Retry with a larger buffer.
	ErrOutputBufferTooSmall = errors.New("output buffer too small")

	// ErrDegenerateTable indicates fewer than two symbols had nonzero
	// frequency, so no prefix code can be constructed. Runs of a
	// single symbol must be special-cased by the caller.
	ErrDegenerateTable = errors.New("degenerate huffman table")

	// ErrUnexpectedEndOfStream indicates the coded input ran out
	// before the requested output length was produced.
	ErrUnexpectedEndOfStream = errors.New("unexpected end of stream")

	// ErrInvalidCode indicates a bit sequence that matches no
	// codeword in the decoding table.
	ErrInvalidCode = errors.New("invalid code")

	// ErrDegenerateMesh indicates mesh geometry the simplifier cannot
	// operate on, such as NaN or infinite coordinates.
	ErrDegenerateMesh = errors.New("degenerate mesh")

	// ErrEmptyInput indicates an input with no content to process.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidParameter indicates a parameter outside its
	// documented range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrPoolExhausted indicates a memory pool has no free blocks.
	// Pools never grow implicitly; call Expand.
	ErrPoolExhausted = errors.New("pool exhausted")
)

// MaxMessageBytes bounds error messages crossing the host boundary.
// Longer messages are truncated, never rejected.
const MaxMessageBytes = 256

// BoundMessage truncates message to MaxMessageBytes. The host-facing
// result structs carry fixed-budget messages so a failure can never
// smuggle an unbounded payload across the sandbox boundary.
func BoundMessage(message string) string {
	if len(message) <= MaxMessageBytes {
		return message
	}
	return message[:MaxMessageBytes]
}

// Fatal reports whether err is unrecoverable within the current job.
// Only pointer-validity violations qualify: exhaustion errors clear
// up after a free or reset, but a stale handle means bookkeeping and
// reality have already diverged.
func Fatal(err error) bool {
	return errors.Is(err, ErrInvalidPointer)
}
