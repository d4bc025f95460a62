// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

func TestBuildTableDegenerate(t *testing.T) {
	tests := []struct {
		name        string
		frequencies []uint32
	}{
		{"empty histogram", make([]uint32, 256)},
		{"single symbol", func() []uint32 {
			f := make([]uint32, 256)
			f['a'] = 100
			return f
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildTable(tt.frequencies); !errors.Is(err, kerr.ErrDegenerateTable) {
				t.Errorf("BuildTable = %v, want ErrDegenerateTable", err)
			}
		})
	}
}

func TestTwoSymbolTable(t *testing.T) {
	frequencies := make([]uint32, 256)
	frequencies['x'] = 1
	frequencies['y'] = 1000

	table, err := BuildTable(frequencies)
	if err != nil {
		t.Fatal(err)
	}
	for _, symbol := range []uint16{'x', 'y'} {
		if got := table.Entry(symbol).Length; got != 1 {
			t.Errorf("symbol %q length = %d, want 1", symbol, got)
		}
	}
	if table.Entry('x').Code == table.Entry('y').Code {
		t.Error("both symbols assigned the same code")
	}
}

// TestPrefixProperty checks that no assigned code is a prefix of
// another, across a spread of histogram shapes.
func TestPrefixProperty(t *testing.T) {
	histograms := map[string][]uint32{
		"uniform": func() []uint32 {
			f := make([]uint32, 256)
			for i := range f {
				f[i] = 7
			}
			return f
		}(),
		"exponential": func() []uint32 {
			f := make([]uint32, 256)
			weight := uint32(1)
			for i := 0; i < 24; i++ {
				f[i] = weight
				if weight < 1<<28 {
					weight *= 2
				}
			}
			return f
		}(),
		"random": func() []uint32 {
			rng := rand.New(rand.NewSource(7))
			f := make([]uint32, 256)
			for i := range f {
				f[i] = uint32(rng.Intn(10000))
			}
			return f
		}(),
	}

	for name, frequencies := range histograms {
		t.Run(name, func(t *testing.T) {
			table, err := BuildTable(frequencies)
			if err != nil {
				t.Fatal(err)
			}

			type codeword struct {
				length uint8
				code   uint32
			}
			var codes []codeword
			for s := 0; s < MaxSymbols; s++ {
				entry := table.Entry(uint16(s))
				if entry.Length > 0 {
					if entry.Length > MaxCodeLength {
						t.Fatalf("symbol %d length %d exceeds max %d", s, entry.Length, MaxCodeLength)
					}
					codes = append(codes, codeword{entry.Length, entry.Code})
				}
			}
			for i, a := range codes {
				for j, b := range codes {
					if i == j {
						continue
					}
					if a.length <= b.length && a.code == b.code>>(b.length-a.length) {
						t.Fatalf("code %b/%d is a prefix of %b/%d", a.code, a.length, b.code, b.length)
					}
				}
			}
		})
	}
}

func TestCanonicalReconstruction(t *testing.T) {
	table, err := BuildTable(Histogram([]byte("the quick brown fox jumps over the lazy dog")))
	if err != nil {
		t.Fatal(err)
	}

	rebuilt, err := TableFromLengths(table.CodeLengths())
	if err != nil {
		t.Fatalf("TableFromLengths failed: %v", err)
	}
	for s := 0; s < MaxSymbols; s++ {
		original, reconstructed := table.Entry(uint16(s)), rebuilt.Entry(uint16(s))
		if original.Length != reconstructed.Length || original.Code != reconstructed.Code {
			t.Errorf("symbol %d: original (%d, %b) vs rebuilt (%d, %b)",
				s, original.Length, original.Code, reconstructed.Length, reconstructed.Code)
		}
	}
}

func TestTableFromLengthsRejectsInvalid(t *testing.T) {
	t.Run("kraft violation", func(t *testing.T) {
		lengths := make([]uint8, 4)
		// Three one-bit codes cannot coexist.
		lengths[0], lengths[1], lengths[2] = 1, 1, 1
		if _, err := TableFromLengths(lengths); !errors.Is(err, kerr.ErrInvalidParameter) {
			t.Errorf("TableFromLengths = %v, want ErrInvalidParameter", err)
		}
	})
	t.Run("overlong", func(t *testing.T) {
		lengths := make([]uint8, 4)
		lengths[0], lengths[1] = 16, 16
		if _, err := TableFromLengths(lengths); !errors.Is(err, kerr.ErrInvalidParameter) {
			t.Errorf("TableFromLengths = %v, want ErrInvalidParameter", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"text":       []byte("it was the best of times, it was the worst of times"),
		"two values": bytes.Repeat([]byte{0xAA, 0x55}, 300),
		"repetitive": []byte(strings.Repeat("abcabcabd", 100)),
		"random": func() []byte {
			rng := rand.New(rand.NewSource(99))
			data := make([]byte, 4096)
			rng.Read(data)
			return data
		}(),
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			table, err := BuildTable(Histogram(payload))
			if err != nil {
				t.Fatal(err)
			}

			encoded := make([]byte, table.EncodedBound(len(payload)))
			encodedLen, err := Encode(payload, table, encoded)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded := make([]byte, len(payload))
			decodedLen, err := Decode(encoded[:encodedLen], table, decoded, len(payload))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decodedLen != len(payload) {
				t.Fatalf("decoded %d bytes, want %d", decodedLen, len(payload))
			}
			if !bytes.Equal(decoded, payload) {
				t.Error("round trip mismatch")
			}
		})
	}
}

// TestRoundTripThroughLengths proves the serialization contract:
// encode with a built table, decode with a table reconstructed from
// lengths alone.
func TestRoundTripThroughLengths(t *testing.T) {
	payload := []byte(strings.Repeat("entropy coding ", 64))
	table, err := BuildTable(Histogram(payload))
	if err != nil {
		t.Fatal(err)
	}

	encoded := make([]byte, table.EncodedBound(len(payload)))
	encodedLen, err := Encode(payload, table, encoded)
	if err != nil {
		t.Fatal(err)
	}

	decoder, err := TableFromLengths(table.CodeLengths())
	if err != nil {
		t.Fatal(err)
	}
	decoded := make([]byte, len(payload))
	if _, err := Decode(encoded[:encodedLen], decoder, decoded, len(payload)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("round trip through serialized lengths mismatch")
	}
}

func TestEncodeErrors(t *testing.T) {
	payload := []byte("aabbb")
	table, err := BuildTable(Histogram(payload))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("uncoded symbol", func(t *testing.T) {
		if _, err := Encode([]byte("abc"), table, make([]byte, 16)); !errors.Is(err, kerr.ErrInvalidParameter) {
			t.Errorf("Encode with uncoded symbol = %v, want ErrInvalidParameter", err)
		}
	})
	t.Run("output too small", func(t *testing.T) {
		long := bytes.Repeat(payload, 100)
		if _, err := Encode(long, table, make([]byte, 2)); !errors.Is(err, kerr.ErrOutputBufferTooSmall) {
			t.Errorf("Encode into tiny buffer = %v, want ErrOutputBufferTooSmall", err)
		}
	})
}

func TestDecodeErrors(t *testing.T) {
	payload := []byte(strings.Repeat("ab", 50) + "c")
	table, err := BuildTable(Histogram(payload))
	if err != nil {
		t.Fatal(err)
	}
	encoded := make([]byte, table.EncodedBound(len(payload)))
	encodedLen, err := Encode(payload, table, encoded)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("truncated input", func(t *testing.T) {
		_, err := Decode(encoded[:encodedLen/2], table, make([]byte, len(payload)), len(payload))
		if !errors.Is(err, kerr.ErrUnexpectedEndOfStream) {
			t.Errorf("Decode of truncated input = %v, want ErrUnexpectedEndOfStream", err)
		}
	})
	t.Run("short destination", func(t *testing.T) {
		_, err := Decode(encoded[:encodedLen], table, make([]byte, 4), len(payload))
		if !errors.Is(err, kerr.ErrOutputBufferTooSmall) {
			t.Errorf("Decode into short destination = %v, want ErrOutputBufferTooSmall", err)
		}
	})
	t.Run("invalid code", func(t *testing.T) {
		// A table built from a complete Huffman code assigns every
		// bit pattern, so ErrInvalidCode requires an incomplete code:
		// three two-bit codewords leave pattern 11 unassigned, and
		// all-ones input walks straight into it.
		incomplete, err := TableFromLengths([]uint8{2, 2, 2})
		if err != nil {
			t.Fatal(err)
		}
		garbage := bytes.Repeat([]byte{0xFF}, 8)
		if _, err := Decode(garbage, incomplete, make([]byte, 16), 16); !errors.Is(err, kerr.ErrInvalidCode) {
			t.Errorf("Decode of garbage = %v, want ErrInvalidCode", err)
		}
	})
}

// TestLengthLimiting forces a histogram whose unconstrained Huffman
// tree is deeper than MaxCodeLength (Fibonacci-like weights) and
// checks the flattening retry still round-trips.
func TestLengthLimiting(t *testing.T) {
	frequencies := make([]uint32, 256)
	a, b := uint32(1), uint32(1)
	for i := 0; i < 40; i++ {
		frequencies[i] = a
		a, b = b, a+b
		if a > 1<<30 {
			break
		}
	}

	table, err := BuildTable(frequencies)
	if err != nil {
		t.Fatal(err)
	}
	if table.MaxLength() > MaxCodeLength {
		t.Fatalf("max code length %d exceeds %d", table.MaxLength(), MaxCodeLength)
	}

	var payload []byte
	for i := 0; i < 30; i++ {
		payload = append(payload, byte(i), byte(i), byte(29-i))
	}
	encoded := make([]byte, table.EncodedBound(len(payload)))
	encodedLen, err := Encode(payload, table, encoded)
	if err != nil {
		t.Fatal(err)
	}
	decoded := make([]byte, len(payload))
	if _, err := Decode(encoded[:encodedLen], table, decoded, len(payload)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("round trip mismatch after length limiting")
	}
}

func BenchmarkEncode(b *testing.B) {
	payload := bytes.Repeat([]byte("compression benchmark payload "), 1000)
	table, err := BuildTable(Histogram(payload))
	if err != nil {
		b.Fatal(err)
	}
	dst := make([]byte, table.EncodedBound(len(payload)))
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(payload, table, dst); err != nil {
			b.Fatal(err)
		}
	}
}
