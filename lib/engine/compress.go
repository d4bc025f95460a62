// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/compress"
	"github.com/rmguney/pixie-juice-sub001/lib/dict"
	"github.com/rmguney/pixie-juice-sub001/lib/flate"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// checkOutputCap rejects a negative host-supplied output capacity
// before any allocation happens.
func (e *Engine) checkOutputCap(op string, maxOutput int) *CompressionResult {
	if maxOutput < 0 {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.failure(op, fmt.Errorf("output capacity %d: %w", maxOutput, kerr.ErrInvalidParameter))
	}
	return nil
}

// DeflateCompress runs the LZ77+Huffman codec over input. Parameters
// keep the codec's meanings: level 0 emits stored blocks, while zero
// windowBits and memLevel select the codec defaults.
func (e *Engine) DeflateCompress(input []byte, level, windowBits, memLevel int) *CompressionResult {
	opts := flate.Options{Level: level, WindowBits: windowBits, MemLevel: memLevel}
	return e.runInto("deflate-compress", flate.Bound(len(input)), func(dst []byte) (int, error) {
		return flate.Compress(input, dst, opts)
	})
}

// DeflateDecompress reverses DeflateCompress. maxOutput caps the
// decompressed size the host is willing to accept.
func (e *Engine) DeflateDecompress(input []byte, maxOutput int) *CompressionResult {
	if r := e.checkOutputCap("deflate-decompress", maxOutput); r != nil {
		return r
	}
	return e.runInto("deflate-decompress", maxOutput, func(dst []byte) (int, error) {
		return flate.Decompress(input, dst[:maxOutput])
	})
}

// HuffmanEncode entropy-codes input as a self-contained block
// carrying its own code lengths.
func (e *Engine) HuffmanEncode(input []byte) *CompressionResult {
	return e.runBytes("huffman-encode", func() ([]byte, error) {
		return compress.CompressHuffman(input)
	})
}

// HuffmanDecode reverses HuffmanEncode. The uncompressed size is not
// part of the block, so the host supplies it.
func (e *Engine) HuffmanDecode(input []byte, uncompressedSize int) *CompressionResult {
	return e.runBytes("huffman-decode", func() ([]byte, error) {
		return compress.DecompressHuffman(input, uncompressedSize)
	})
}

// LZ4CompressFast runs the LZ4 block codec. acceleration trades
// ratio for speed, 1 being the strongest match effort.
func (e *Engine) LZ4CompressFast(input []byte, acceleration int) *CompressionResult {
	return e.runBytes("lz4-compress", func() ([]byte, error) {
		return compress.CompressLZ4(input, acceleration)
	})
}

// LZ4DecompressFast reverses LZ4CompressFast.
func (e *Engine) LZ4DecompressFast(input []byte, uncompressedSize int) *CompressionResult {
	return e.runBytes("lz4-decompress", func() ([]byte, error) {
		return compress.DecompressLZ4(input, uncompressedSize)
	})
}

// ZstdCompressAdvanced runs Zstd with explicit tuning parameters.
func (e *Engine) ZstdCompressAdvanced(input []byte, opts compress.ZstdOptions) *CompressionResult {
	return e.runBytes("zstd-compress", func() ([]byte, error) {
		return compress.CompressZstd(input, opts)
	})
}

// ZstdDecompress reverses ZstdCompressAdvanced.
func (e *Engine) ZstdDecompress(input []byte, uncompressedSize int) *CompressionResult {
	return e.runBytes("zstd-decompress", func() ([]byte, error) {
		return compress.DecompressZstd(input, uncompressedSize)
	})
}

// DictionaryCompress codes input against a trained dictionary.
func (e *Engine) DictionaryCompress(d *dict.Dictionary, input []byte) *CompressionResult {
	return e.runInto("dict-compress", dict.Bound(len(input)), func(dst []byte) (int, error) {
		return d.Compress(input, dst)
	})
}

// DictionaryDecompress reverses DictionaryCompress with the same
// dictionary. maxOutput caps the decompressed size.
func (e *Engine) DictionaryDecompress(d *dict.Dictionary, input []byte, maxOutput int) *CompressionResult {
	if r := e.checkOutputCap("dict-decompress", maxOutput); r != nil {
		return r
	}
	return e.runInto("dict-decompress", maxOutput, func(dst []byte) (int, error) {
		return d.Decompress(input, dst[:maxOutput])
	})
}
