// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"
	"sync"

	"github.com/rmguney/pixie-juice-sub001/lib/flate"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Strip is one compressed horizontal band of an image.
type Strip struct {
	// StartRow is the band's first scanline in the source image.
	StartRow int

	// Rows is the number of scanlines in the band.
	Rows int

	// Data is the band's compressed bytes. Bands are independent
	// deflate streams, so each decompresses on its own.
	Data []byte
}

// CompressStrips compresses an image as disjoint horizontal bands,
// one worker goroutine per band. Band boundaries are computed up
// front from the worker count, so the partition — and therefore the
// output — is deterministic for a given (height, workers) pair. Each
// worker writes only its own pre-sized region of the shared output
// buffer and owns all of its scratch state. The call joins every
// worker before returning; if any band fails, the whole call fails
// and no partial output is returned.
func CompressStrips(pixels []byte, width, height, bytesPerPixel, workers int, opts flate.Options) ([]Strip, error) {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return nil, fmt.Errorf("raster %dx%d with %d bytes per pixel: %w",
			width, height, bytesPerPixel, kerr.ErrInvalidParameter)
	}
	stride := width * bytesPerPixel
	if len(pixels) != stride*height {
		return nil, fmt.Errorf("raster %dx%d needs %d pixel bytes, got %d: %w",
			width, height, stride*height, len(pixels), kerr.ErrInvalidParameter)
	}
	if workers < 1 {
		return nil, fmt.Errorf("worker count %d: %w", workers, kerr.ErrInvalidParameter)
	}
	if workers > height {
		workers = height
	}

	// Equal-height partition with the remainder spread over the
	// leading bands, computed before any worker starts.
	baseRows := height / workers
	extraRows := height % workers
	strips := make([]Strip, workers)
	startRow := 0
	for i := range strips {
		rows := baseRows
		if i < extraRows {
			rows++
		}
		strips[i] = Strip{StartRow: startRow, Rows: rows}
		startRow += rows
	}

	// One shared buffer, one disjoint region per band.
	regionSize := flate.Bound((baseRows + 1) * stride)
	shared := make([]byte, workers*regionSize)

	var group sync.WaitGroup
	errs := make([]error, workers)
	for i := range strips {
		group.Add(1)
		go func(i int) {
			defer group.Done()
			strip := &strips[i]
			band := pixels[strip.StartRow*stride : (strip.StartRow+strip.Rows)*stride]
			region := shared[i*regionSize : (i+1)*regionSize]
			n, err := flate.Compress(band, region, opts)
			if err != nil {
				errs[i] = fmt.Errorf("band %d (rows %d..%d): %w",
					i, strip.StartRow, strip.StartRow+strip.Rows-1, err)
				return
			}
			strip.Data = region[:n]
		}(i)
	}
	group.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return strips, nil
}

// DecompressStrips reassembles an image from its compressed bands.
// The strips must cover the raster exactly, in order.
func DecompressStrips(strips []Strip, width, height, bytesPerPixel int) ([]byte, error) {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return nil, fmt.Errorf("raster %dx%d with %d bytes per pixel: %w",
			width, height, bytesPerPixel, kerr.ErrInvalidParameter)
	}
	stride := width * bytesPerPixel
	pixels := make([]byte, stride*height)

	nextRow := 0
	for i, strip := range strips {
		if strip.StartRow != nextRow || strip.Rows <= 0 || strip.StartRow+strip.Rows > height {
			return nil, fmt.Errorf("strip %d covers rows %d..%d, expected start %d: %w",
				i, strip.StartRow, strip.StartRow+strip.Rows-1, nextRow, kerr.ErrInvalidParameter)
		}
		band := pixels[strip.StartRow*stride : (strip.StartRow+strip.Rows)*stride]
		n, err := flate.Decompress(strip.Data, band)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
		if n != len(band) {
			return nil, fmt.Errorf("band %d produced %d bytes, expected %d: %w",
				i, n, len(band), kerr.ErrInvalidCode)
		}
		nextRow = strip.StartRow + strip.Rows
	}
	if nextRow != height {
		return nil, fmt.Errorf("strips cover %d of %d rows: %w", nextRow, height, kerr.ErrInvalidParameter)
	}
	return pixels, nil
}
