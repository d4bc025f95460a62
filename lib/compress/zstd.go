// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// ZstdOptions carries the Zstandard tuning knobs exposed to callers.
// Zero values select defaults.
type ZstdOptions struct {
	// Level is the zstd compression level, 1..22. Default 3.
	Level int

	// WindowLog sets the match window to 1<<WindowLog bytes, 10..27.
	// Zero keeps the level's own window.
	WindowLog int

	// HashLog (6..26) and ChainLog (6..28) are validated for
	// interface compatibility. The underlying encoder sizes its own
	// tables per level, so they do not retune it; out-of-range
	// values still fail fast instead of being silently dropped.
	HashLog  int
	ChainLog int
}

func (o ZstdOptions) normalize() (ZstdOptions, error) {
	if o.Level == 0 {
		o.Level = 3
	}
	if o.Level < 1 || o.Level > 22 {
		return o, fmt.Errorf("zstd level %d outside 1..22: %w", o.Level, kerr.ErrInvalidParameter)
	}
	if o.WindowLog != 0 && (o.WindowLog < 10 || o.WindowLog > 27) {
		return o, fmt.Errorf("zstd window log %d outside 10..27: %w", o.WindowLog, kerr.ErrInvalidParameter)
	}
	if o.HashLog != 0 && (o.HashLog < 6 || o.HashLog > 26) {
		return o, fmt.Errorf("zstd hash log %d outside 6..26: %w", o.HashLog, kerr.ErrInvalidParameter)
	}
	if o.ChainLog != 0 && (o.ChainLog < 6 || o.ChainLog > 28) {
		return o, fmt.Errorf("zstd chain log %d outside 6..28: %w", o.ChainLog, kerr.ErrInvalidParameter)
	}
	return o, nil
}

// zstdDecoder is reused across calls to avoid repeated
// initialization overhead. zstd.Decoder is safe for concurrent use.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// CompressZstd compresses data with Zstandard under the given
// options. Returns ErrIncompressible when the output would not be
// smaller than the input.
func CompressZstd(data []byte, opts ZstdOptions) ([]byte, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("zstd compress: %w", kerr.ErrEmptyInput)
	}

	encoderOptions := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)),
	}
	if opts.WindowLog != 0 {
		encoderOptions = append(encoderOptions, zstd.WithWindowSize(1<<opts.WindowLog))
	}
	encoder, err := zstd.NewWriter(nil, encoderOptions...)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %v: %w", err, kerr.ErrInvalidParameter)
	}
	compressed := encoder.EncodeAll(data, nil)
	encoder.Close()

	if len(compressed) >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

// DecompressZstd decompresses a Zstandard payload. uncompressedSize
// must match the original length exactly.
func DecompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize < 0 {
		return nil, fmt.Errorf("negative uncompressed size %d: %w", uncompressedSize, kerr.ErrInvalidParameter)
	}
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %v: %w", err, kerr.ErrInvalidCode)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress produced %d bytes, expected %d: %w",
			len(result), uncompressedSize, kerr.ErrInvalidCode)
	}
	return result, nil
}
