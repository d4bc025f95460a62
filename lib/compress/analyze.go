// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"math"
)

// Stats summarizes a payload's compressibility.
type Stats struct {
	// OriginalSize is the probed payload length in bytes.
	OriginalSize int

	// Histogram counts occurrences of each byte value.
	Histogram [256]uint32

	// UniqueBytes is the number of distinct byte values present.
	UniqueBytes int

	// Entropy is the zeroth-order byte entropy in bits per byte,
	// 0..8. Random or already-compressed data sits near 8.
	Entropy float64

	// PredictedRatio is the theoretical best compressed/original
	// ratio under an order-0 model (Entropy/8).
	PredictedRatio float64

	// PredictedSize is OriginalSize scaled by PredictedRatio.
	PredictedSize int
}

// Analyze probes a payload's byte distribution and estimates its
// compression potential. The estimate is an order-0 bound: match-based
// codecs routinely beat it on repetitive data, and nothing beats it on
// random data.
func Analyze(data []byte) Stats {
	stats := Stats{OriginalSize: len(data)}
	if len(data) == 0 {
		return stats
	}

	for _, b := range data {
		stats.Histogram[b]++
	}
	total := float64(len(data))
	for _, count := range stats.Histogram {
		if count == 0 {
			continue
		}
		stats.UniqueBytes++
		probability := float64(count) / total
		stats.Entropy -= probability * math.Log2(probability)
	}

	stats.PredictedRatio = stats.Entropy / 8
	stats.PredictedSize = int(total * stats.PredictedRatio)
	return stats
}

// Select picks a codec for a payload from a cheap distribution probe.
// Near-random data is stored rather than burned on a codec that
// cannot shrink it; skewed text-like data goes to zstd for ratio;
// everything else takes lz4 as the fast default.
func Select(data []byte) Codec {
	if len(data) == 0 {
		return CodecNone
	}
	stats := Analyze(data)

	switch {
	case stats.Entropy >= 7.9:
		return CodecNone
	case stats.Entropy < 6.0 || stats.UniqueBytes <= 64:
		return CodecZstd
	default:
		return CodecLZ4
	}
}
