// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rmguney/pixie-juice-sub001/lib/flate"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

func stripTestImage(width, height, bytesPerPixel int) []byte {
	pixels := make([]byte, width*height*bytesPerPixel)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < bytesPerPixel; c++ {
				pixels[(y*width+x)*bytesPerPixel+c] = byte((x ^ y) + 31*c)
			}
		}
	}
	return pixels
}

func TestCompressStripsRoundTrip(t *testing.T) {
	const width, height, bpp = 64, 100, 4
	pixels := stripTestImage(width, height, bpp)

	for _, workers := range []int{1, 3, 4, 16, 200} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			strips, err := CompressStrips(pixels, width, height, bpp, workers, flate.DefaultOptions())
			if err != nil {
				t.Fatalf("CompressStrips: %v", err)
			}

			// Bands must tile the raster exactly, in order.
			effective := workers
			if effective > height {
				effective = height
			}
			if len(strips) != effective {
				t.Fatalf("%d strips for %d workers", len(strips), effective)
			}
			row := 0
			for i, strip := range strips {
				if strip.StartRow != row {
					t.Fatalf("strip %d starts at row %d, want %d", i, strip.StartRow, row)
				}
				row += strip.Rows
			}
			if row != height {
				t.Fatalf("strips cover %d of %d rows", row, height)
			}

			reassembled, err := DecompressStrips(strips, width, height, bpp)
			if err != nil {
				t.Fatalf("DecompressStrips: %v", err)
			}
			if !bytes.Equal(reassembled, pixels) {
				t.Fatal("strip round trip mismatch")
			}
		})
	}
}

func TestCompressStripsDeterministic(t *testing.T) {
	const width, height, bpp = 32, 64, 3
	pixels := stripTestImage(width, height, bpp)

	first, err := CompressStrips(pixels, width, height, bpp, 4, flate.DefaultOptions())
	if err != nil {
		t.Fatalf("first CompressStrips: %v", err)
	}
	second, err := CompressStrips(pixels, width, height, bpp, 4, flate.DefaultOptions())
	if err != nil {
		t.Fatalf("second CompressStrips: %v", err)
	}

	for i := range first {
		if first[i].StartRow != second[i].StartRow || first[i].Rows != second[i].Rows {
			t.Fatalf("partition differs between runs at strip %d", i)
		}
		if !bytes.Equal(first[i].Data, second[i].Data) {
			t.Fatalf("strip %d bytes differ between runs", i)
		}
	}
}

func TestCompressStripsValidation(t *testing.T) {
	pixels := stripTestImage(8, 8, 1)

	if _, err := CompressStrips(pixels, 8, 8, 1, 0, flate.DefaultOptions()); !errors.Is(err, kerr.ErrInvalidParameter) {
		t.Fatalf("zero workers: got %v, want ErrInvalidParameter", err)
	}
	if _, err := CompressStrips(pixels, 0, 8, 1, 2, flate.DefaultOptions()); !errors.Is(err, kerr.ErrInvalidParameter) {
		t.Fatalf("zero width: got %v, want ErrInvalidParameter", err)
	}
	if _, err := CompressStrips(pixels[:10], 8, 8, 1, 2, flate.DefaultOptions()); !errors.Is(err, kerr.ErrInvalidParameter) {
		t.Fatalf("short pixel buffer: got %v, want ErrInvalidParameter", err)
	}
}

func TestCompressStripsFailsWholeCall(t *testing.T) {
	pixels := stripTestImage(8, 8, 1)
	// An invalid codec option makes every band fail; the call must
	// return the error rather than partial strips.
	if _, err := CompressStrips(pixels, 8, 8, 1, 2, flate.Options{Level: 11}); !errors.Is(err, kerr.ErrInvalidParameter) {
		t.Fatalf("got %v, want propagated ErrInvalidParameter", err)
	}
}

func TestDecompressStripsRejectsBadPartition(t *testing.T) {
	const width, height, bpp = 16, 16, 1
	pixels := stripTestImage(width, height, bpp)
	strips, err := CompressStrips(pixels, width, height, bpp, 2, flate.DefaultOptions())
	if err != nil {
		t.Fatalf("CompressStrips: %v", err)
	}

	t.Run("gap in coverage", func(t *testing.T) {
		gapped := []Strip{strips[1]}
		if _, err := DecompressStrips(gapped, width, height, bpp); !errors.Is(err, kerr.ErrInvalidParameter) {
			t.Fatalf("got %v, want ErrInvalidParameter", err)
		}
	})
	t.Run("incomplete coverage", func(t *testing.T) {
		if _, err := DecompressStrips(strips[:1], width, height, bpp); !errors.Is(err, kerr.ErrInvalidParameter) {
			t.Fatalf("got %v, want ErrInvalidParameter", err)
		}
	})
}
