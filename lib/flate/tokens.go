// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package flate

// Symbol alphabets. Literal/length symbols share one alphabet:
// 0–255 are literals, endOfBlock terminates a coded block, and
// 257–285 select a match length range refined by extra bits.
// Distances use their own thirty-symbol alphabet. The ranges and
// extra-bit widths are DEFLATE's; only the framing around them is
// ours.
const (
	endOfBlock     = 256
	litLenAlphabet = 286
	distAlphabet   = 30

	minMatch = 4
	maxMatch = 258
)

// lengthBase[i] and lengthExtraBits[i] describe length code 257+i.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase[i] and distExtraBits[i] describe distance code i.
var distBase = [30]uint32{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
	8193, 12289, 16385, 24577,
}

var distExtraBits = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// lengthCodeOf maps a match length (3..258) to its length code
// index (0..28). Built once at package load.
var lengthCodeOf [maxMatch + 1]uint8

func init() {
	// Code 28 encodes exactly 258 with no extra bits; every other
	// code covers [base, nextBase).
	for code := 0; code < len(lengthBase); code++ {
		base := int(lengthBase[code])
		top := maxMatch
		if code < len(lengthBase)-1 {
			top = int(lengthBase[code+1]) - 1
		}
		for l := base; l <= top; l++ {
			lengthCodeOf[l] = uint8(code)
		}
	}
	lengthCodeOf[maxMatch] = uint8(len(lengthBase) - 1)
}

// distCode returns the distance code index and extra-bit payload for
// a match distance (1..32768).
func distCode(distance uint32) (code uint8, extra uint32, extraBits uint8) {
	for i := len(distBase) - 1; i >= 0; i-- {
		if distance >= distBase[i] {
			return uint8(i), distance - distBase[i], distExtraBits[i]
		}
	}
	return 0, 0, 0
}

// lengthSymbol returns the literal/length alphabet symbol and
// extra-bit payload for a match length.
func lengthSymbol(length uint32) (symbol uint16, extra uint32, extraBits uint8) {
	code := lengthCodeOf[length]
	return 257 + uint16(code), length - uint32(lengthBase[code]), lengthExtraBits[code]
}

// token is one LZ77 output item: either a literal byte or a
// (length, distance) back-reference.
type token struct {
	length   uint32 // 0 for a literal
	distance uint32
	literal  byte
}
