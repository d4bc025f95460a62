// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// LZ4 acceleration bounds. Acceleration trades ratio for speed;
// values follow the reference implementation's accepted range.
const (
	LZ4MinAcceleration = 1
	LZ4MaxAcceleration = 65537
)

// CompressLZ4 compresses data with LZ4 block compression. The
// acceleration parameter is validated against the 1..65537 contract;
// the block compressor itself runs a single fast path, so the knob
// gates the call rather than retuning the matcher. Returns
// ErrIncompressible when the output would not be smaller than the
// input.
func CompressLZ4(data []byte, acceleration int) ([]byte, error) {
	if acceleration < LZ4MinAcceleration || acceleration > LZ4MaxAcceleration {
		return nil, fmt.Errorf("lz4 acceleration %d outside %d..%d: %w",
			acceleration, LZ4MinAcceleration, LZ4MaxAcceleration, kerr.ErrInvalidParameter)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("lz4 compress: %w", kerr.ErrEmptyInput)
	}

	// CompressBlockBound returns the maximum compressed size.
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible; an output no smaller than the input is treated
	// the same way.
	if written == 0 || written >= len(data) {
		return nil, ErrIncompressible
	}
	return destination[:written], nil
}

// DecompressLZ4 decompresses an LZ4 block. uncompressedSize must
// match the original length exactly; a mismatch or a malformed block
// fails with kerr.ErrInvalidCode.
func DecompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize < 0 {
		return nil, fmt.Errorf("negative uncompressed size %d: %w", uncompressedSize, kerr.ErrInvalidParameter)
	}
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %v: %w", err, kerr.ErrInvalidCode)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress produced %d bytes, expected %d: %w",
			read, uncompressedSize, kerr.ErrInvalidCode)
	}
	return destination, nil
}
