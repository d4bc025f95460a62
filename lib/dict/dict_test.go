// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package dict

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// iconCorpus fakes a batch of structurally similar small assets: a
// shared header and palette with varying pixel runs.
func iconCorpus() []byte {
	var corpus bytes.Buffer
	for i := 0; i < 50; i++ {
		corpus.WriteString("ICON/v2 palette=rgba8888 width=16 height=16\n")
		for row := 0; row < 4; row++ {
			corpus.WriteString(strings.Repeat("PIXELROW ", 4))
			corpus.WriteByte(byte(i + row))
		}
	}
	return corpus.Bytes()
}

func TestTrainValidation(t *testing.T) {
	corpus := []byte("some training data")
	cases := []struct {
		name     string
		corpus   []byte
		maxSize  int
		hashBits int
		want     error
	}{
		{"empty corpus", nil, 1024, 0, kerr.ErrEmptyInput},
		{"zero max size", corpus, 0, 0, kerr.ErrInvalidParameter},
		{"oversized max", corpus, MaxDictionarySize + 1, 0, kerr.ErrInvalidParameter},
		{"hash bits low", corpus, 1024, 7, kerr.ErrInvalidParameter},
		{"hash bits high", corpus, 1024, 25, kerr.ErrInvalidParameter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Train(tc.corpus, tc.maxSize, tc.hashBits); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTrainEvictsOldestCorpus(t *testing.T) {
	corpus := append(bytes.Repeat([]byte("old "), 100), bytes.Repeat([]byte("new "), 100)...)
	d, err := Train(corpus, 380, 12)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if d.Size() != 380 {
		t.Fatalf("dictionary size %d, want cap 380", d.Size())
	}
	if !bytes.HasSuffix(corpus, d.data) {
		t.Fatalf("retained bytes are not the most recent corpus suffix")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	corpus := iconCorpus()
	d, err := Train(corpus, MaxDictionarySize, 0)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	random := make([]byte, 500)
	rand.New(rand.NewSource(5)).Read(random)

	inputs := map[string][]byte{
		"empty":             nil,
		"pure dictionary":   []byte("ICON/v2 palette=rgba8888 width=16 height=16\nPIXELROW PIXELROW "),
		"mixed":             append([]byte("unseen prefix bytes "), []byte("palette=rgba8888 trailing")...),
		"foreign":           random,
		"short":             []byte("ab"),
		"corpus-like batch": corpus[:2000],
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			dst := make([]byte, Bound(len(input)))
			n, err := d.Compress(input, dst)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			out := make([]byte, len(input))
			m, err := d.Decompress(dst[:n], out)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(out[:m], input) {
				t.Fatalf("round trip mismatch")
			}
		})
	}
}

func TestDictionaryMatchesShrinkSimilarInput(t *testing.T) {
	d, err := Train(iconCorpus(), MaxDictionarySize, 0)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	// An unseen icon built from the trained vocabulary should compress
	// well below its literal size.
	input := []byte("ICON/v2 palette=rgba8888 width=16 height=16\n" + strings.Repeat("PIXELROW ", 8))
	dst := make([]byte, Bound(len(input)))
	n, err := d.Compress(input, dst)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n >= len(input)/2 {
		t.Fatalf("corpus-shaped input compressed to %d of %d bytes, expected under half", n, len(input))
	}
}

func TestCompressOutputBufferTooSmall(t *testing.T) {
	d, err := Train([]byte("wholly unrelated training text"), 1024, 10)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	input := make([]byte, 300)
	rand.New(rand.NewSource(9)).Read(input)
	if _, err := d.Compress(input, make([]byte, 10)); !errors.Is(err, kerr.ErrOutputBufferTooSmall) {
		t.Fatalf("got %v, want ErrOutputBufferTooSmall", err)
	}
}

func TestDecompressRejectsCorruptStreams(t *testing.T) {
	d, err := Train(iconCorpus(), MaxDictionarySize, 0)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	t.Run("truncated literal run", func(t *testing.T) {
		if _, err := d.Decompress([]byte{0x05, 'a', 'b'}, make([]byte, 16)); !errors.Is(err, kerr.ErrUnexpectedEndOfStream) {
			t.Fatalf("got %v, want ErrUnexpectedEndOfStream", err)
		}
	})
	t.Run("truncated copy token", func(t *testing.T) {
		if _, err := d.Decompress([]byte{0x80, 0x01}, make([]byte, 16)); !errors.Is(err, kerr.ErrUnexpectedEndOfStream) {
			t.Fatalf("got %v, want ErrUnexpectedEndOfStream", err)
		}
	})
	t.Run("offset past dictionary end", func(t *testing.T) {
		stream := []byte{0x80 | 0x10, 0xFF, 0xFF, 0xFF}
		if _, err := d.Decompress(stream, make([]byte, 64)); !errors.Is(err, kerr.ErrInvalidCode) {
			t.Fatalf("got %v, want ErrInvalidCode", err)
		}
	})
	t.Run("output too small for copy", func(t *testing.T) {
		stream := []byte{0x80, 0x00, 0x00, 0x00}
		if _, err := d.Decompress(stream, make([]byte, 2)); !errors.Is(err, kerr.ErrOutputBufferTooSmall) {
			t.Fatalf("got %v, want ErrOutputBufferTooSmall", err)
		}
	})
}

func TestPersistenceRoundTrip(t *testing.T) {
	d, err := Train(iconCorpus(), MaxDictionarySize, 14)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	encoded, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	loaded, err := LoadDictionary(encoded)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	if loaded.Identity() != d.Identity() {
		t.Fatalf("identity changed across persistence")
	}

	// A stream compressed before persistence must decompress with the
	// loaded dictionary.
	input := []byte("ICON/v2 palette=rgba8888 width=16 height=16\nPIXELROW PIXELROW ")
	dst := make([]byte, Bound(len(input)))
	n, err := d.Compress(input, dst)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out := make([]byte, len(input))
	m, err := loaded.Decompress(dst[:n], out)
	if err != nil {
		t.Fatalf("Decompress with loaded dictionary: %v", err)
	}
	if !bytes.Equal(out[:m], input) {
		t.Fatalf("cross-instance round trip mismatch")
	}
}

func TestLoadDictionaryRejectsTampering(t *testing.T) {
	d, err := Train([]byte("a modest training corpus for tamper checks"), 1024, 10)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	encoded, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	// Flip a byte inside the CBOR payload region. Either the CBOR
	// structure breaks or the digest check fires; both must fail.
	tampered := append([]byte(nil), encoded...)
	tampered[len(tampered)/2] ^= 0x40
	if _, err := LoadDictionary(tampered); err == nil {
		t.Fatal("LoadDictionary accepted a tampered payload")
	}
}

func TestMarshalBinaryDeterministic(t *testing.T) {
	d, err := Train(iconCorpus(), MaxDictionarySize, 0)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	first, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("first MarshalBinary: %v", err)
	}
	second, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("second MarshalBinary: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("persistent encoding is not deterministic")
	}
}
