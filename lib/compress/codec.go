// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"errors"
	"fmt"
)

// Codec identifies a compression algorithm. Tags are stored in frame
// headers (1 byte each). These values are format constants — changing
// them breaks frame compatibility.
type Codec uint8

const (
	// CodecNone indicates uncompressed data. Used for
	// already-compressed content (PNG payloads, video) where further
	// compression adds CPU cost without reducing size.
	CodecNone Codec = 0

	// CodecHuffman indicates raw canonical Huffman coding with no
	// match finding. Cheapest coded option for skewed byte
	// histograms without repetition structure.
	CodecHuffman Codec = 1

	// CodecDeflate indicates the in-tree LZ77+Huffman codec.
	CodecDeflate Codec = 2

	// CodecDict indicates trained-dictionary compression. Requires
	// both sides to hold a dictionary with the same identity.
	CodecDict Codec = 3

	// CodecLZ4 indicates LZ4 block compression. Fast default for
	// binary data when content type is unknown or mixed.
	CodecLZ4 Codec = 4

	// CodecZstd indicates Zstandard compression. Better ratios for
	// text-like content at higher CPU cost.
	CodecZstd Codec = 5
)

// ErrIncompressible reports that a codec could not shrink the input.
// Callers typically fall back to CodecNone rather than storing an
// expanded payload.
var ErrIncompressible = errors.New("data is incompressible")

// String returns the human-readable name of a codec tag.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecHuffman:
		return "huffman"
	case CodecDeflate:
		return "deflate"
	case CodecDict:
		return "dict"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec tag from its string representation.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "none":
		return CodecNone, nil
	case "huffman":
		return CodecHuffman, nil
	case "deflate":
		return CodecDeflate, nil
	case "dict":
		return CodecDict, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown codec: %q", name)
	}
}
