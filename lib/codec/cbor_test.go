// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// sampleHeader is shaped like the frame headers and dictionary
// payloads the kernel persists: small structs of tagged scalars plus
// a byte string.
type sampleHeader struct {
	Codec  string `cbor:"codec"`
	Size   uint64 `cbor:"size"`
	Digest []byte `cbor:"digest,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleHeader{
		Codec:  "deflate",
		Size:   65536,
		Digest: []byte{0xde, 0xad, 0xbe, 0xef},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleHeader
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Codec != original.Codec || decoded.Size != original.Size ||
		!bytes.Equal(decoded.Digest, original.Digest) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Dictionary identity is a digest over encoded bytes, so the same
	// logical value must always encode identically — including via
	// map values, where key order would otherwise vary.
	value := map[string]any{
		"codec":   "zstd",
		"size":    uint64(1 << 20),
		"entropy": 7.32,
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	headers := []sampleHeader{
		{Codec: "huffman", Size: 100},
		{Codec: "lz4", Size: 4096, Digest: []byte{1, 2, 3}},
		{Codec: "none", Size: 0},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, header := range headers {
		if err := encoder.Encode(header); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range headers {
		var got sampleHeader
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode header %d: %v", i, err)
		}
		if got.Codec != want.Codec || got.Size != want.Size || !bytes.Equal(got.Digest, want.Digest) {
			t.Errorf("header %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	// Newer writers may add header fields; older readers must still
	// decode the fields they know.
	extended, err := Marshal(map[string]any{
		"codec":      "deflate",
		"size":       uint64(10),
		"generation": 4,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleHeader
	if err := Unmarshal(extended, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Codec != "deflate" || decoded.Size != 10 {
		t.Errorf("known fields lost: %+v", decoded)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var header sampleHeader
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &header); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"codec": "zstd"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if !strings.Contains(notation, `"codec"`) || !strings.Contains(notation, `"zstd"`) {
		t.Errorf("notation %q missing expected keys", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	header := sampleHeader{Codec: "deflate", Size: 65536, Digest: make([]byte, 32)}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Marshal(header)
	}
}
