// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package flate

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Filter identifies a per-scanline predictor. The predictors and
// their numbering follow the PNG filter method 0 set, which is what
// makes filtered rows compress well under LZ77.
type Filter uint8

const (
	FilterNone    Filter = 0
	FilterSub     Filter = 1
	FilterUp      Filter = 2
	FilterAverage Filter = 3
	FilterPaeth   Filter = 4

	filterCount = 5
)

// FilterStrategy selects the predictor for each scanline.
type FilterStrategy struct {
	fixed  Filter
	minSAD bool
}

// FilterFixed applies the same predictor to every scanline.
func FilterFixed(f Filter) FilterStrategy {
	return FilterStrategy{fixed: f}
}

// FilterMinSAD picks, per scanline, the predictor whose filtered
// output has the minimum sum of absolute differences. Cheap to
// evaluate and a good proxy for post-compression size.
func FilterMinSAD() FilterStrategy {
	return FilterStrategy{minSAD: true}
}

// ScanlinesBound returns a dst capacity guaranteed to hold the
// compression of height scanlines of rowBytes pixels each: the
// filtered image carries one filter tag per row.
func ScanlinesBound(rowBytes, height int) int {
	return Bound((rowBytes + 1) * height)
}

// CompressScanlines filters a raster image row by row and compresses
// the filtered bytes. Each output row is prefixed with its filter tag,
// so decompression plus unfiltering reconstructs the pixels exactly.
// Filter choice materially changes match density, which is why the
// strategy is a caller decision rather than a constant.
func CompressScanlines(pixels []byte, width, height, bytesPerPixel int, dst []byte, opts Options, strategy FilterStrategy) (int, error) {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return 0, fmt.Errorf("raster %dx%d with %d bytes per pixel: %w",
			width, height, bytesPerPixel, kerr.ErrInvalidParameter)
	}
	if !strategy.minSAD && strategy.fixed >= filterCount {
		return 0, fmt.Errorf("filter %d unknown: %w", strategy.fixed, kerr.ErrInvalidParameter)
	}
	rowBytes := width * bytesPerPixel
	if len(pixels) != rowBytes*height {
		return 0, fmt.Errorf("raster %dx%d needs %d pixel bytes, got %d: %w",
			width, height, rowBytes*height, len(pixels), kerr.ErrInvalidParameter)
	}

	filtered := make([]byte, (rowBytes+1)*height)
	scratch := make([]byte, rowBytes)
	for row := 0; row < height; row++ {
		current := pixels[row*rowBytes : (row+1)*rowBytes]
		var previous []byte
		if row > 0 {
			previous = pixels[(row-1)*rowBytes : row*rowBytes]
		}
		out := filtered[row*(rowBytes+1):]

		chosen := strategy.fixed
		if strategy.minSAD {
			chosen = pickFilter(current, previous, bytesPerPixel, scratch)
		}
		out[0] = byte(chosen)
		applyFilter(chosen, current, previous, bytesPerPixel, out[1:1+rowBytes])
	}

	return Compress(filtered, dst, opts)
}

// DecompressScanlines reverses CompressScanlines: it inflates the
// filtered image and unfilters each row back into pixels.
func DecompressScanlines(input []byte, width, height, bytesPerPixel int, pixels []byte) error {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return fmt.Errorf("raster %dx%d with %d bytes per pixel: %w",
			width, height, bytesPerPixel, kerr.ErrInvalidParameter)
	}
	rowBytes := width * bytesPerPixel
	if len(pixels) < rowBytes*height {
		return fmt.Errorf("pixel buffer needs %d bytes, capacity %d: %w",
			rowBytes*height, len(pixels), kerr.ErrOutputBufferTooSmall)
	}

	filtered := make([]byte, (rowBytes+1)*height)
	n, err := Decompress(input, filtered)
	if err != nil {
		return err
	}
	if n != len(filtered) {
		return fmt.Errorf("filtered image is %d bytes, expected %d: %w", n, len(filtered), kerr.ErrInvalidCode)
	}

	for row := 0; row < height; row++ {
		in := filtered[row*(rowBytes+1):]
		filter := Filter(in[0])
		if filter >= filterCount {
			return fmt.Errorf("scanline %d tagged with unknown filter %d: %w", row, filter, kerr.ErrInvalidCode)
		}
		current := pixels[row*rowBytes : (row+1)*rowBytes]
		var previous []byte
		if row > 0 {
			previous = pixels[(row-1)*rowBytes : row*rowBytes]
		}
		unfilter(filter, in[1:1+rowBytes], previous, bytesPerPixel, current)
	}
	return nil
}

// pickFilter evaluates every predictor on one scanline and returns
// the one with the minimum sum of absolute differences, treating the
// filtered bytes as signed residuals.
func pickFilter(current, previous []byte, bytesPerPixel int, scratch []byte) Filter {
	best := FilterNone
	bestScore := -1
	for f := Filter(0); f < filterCount; f++ {
		applyFilter(f, current, previous, bytesPerPixel, scratch)
		score := 0
		for _, b := range scratch {
			// |residual| with wraparound bytes folded toward zero.
			v := int(int8(b))
			if v < 0 {
				v = -v
			}
			score += v
		}
		if bestScore < 0 || score < bestScore {
			best, bestScore = f, score
		}
	}
	return best
}

// applyFilter writes the filtered scanline into out. previous is nil
// for the first row, which the Up/Average/Paeth predictors treat as
// all zero.
func applyFilter(filter Filter, current, previous []byte, bytesPerPixel int, out []byte) {
	for i := range current {
		var left, up, upLeft byte
		if i >= bytesPerPixel {
			left = current[i-bytesPerPixel]
		}
		if previous != nil {
			up = previous[i]
			if i >= bytesPerPixel {
				upLeft = previous[i-bytesPerPixel]
			}
		}
		out[i] = current[i] - predict(filter, left, up, upLeft)
	}
}

// unfilter reconstructs a scanline in place in current from its
// residuals. Reconstruction is sequential: each byte's predictor may
// reference bytes reconstructed earlier in the same row.
func unfilter(filter Filter, residuals, previous []byte, bytesPerPixel int, current []byte) {
	for i := range residuals {
		var left, up, upLeft byte
		if i >= bytesPerPixel {
			left = current[i-bytesPerPixel]
		}
		if previous != nil {
			up = previous[i]
			if i >= bytesPerPixel {
				upLeft = previous[i-bytesPerPixel]
			}
		}
		current[i] = residuals[i] + predict(filter, left, up, upLeft)
	}
}

func predict(filter Filter, left, up, upLeft byte) byte {
	switch filter {
	case FilterSub:
		return left
	case FilterUp:
		return up
	case FilterAverage:
		return byte((int(left) + int(up)) / 2)
	case FilterPaeth:
		return paeth(left, up, upLeft)
	default:
		return 0
	}
}

// paeth returns whichever of the three neighbors is closest to the
// linear gradient left+up-upLeft, preferring left, then up.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa := abs(p - int(left))
	pb := abs(p - int(up))
	pc := abs(p - int(upLeft))
	if pa <= pb && pa <= pc {
		return left
	}
	if pb <= pc {
		return up
	}
	return upLeft
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
