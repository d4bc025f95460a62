// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package flate implements the kernel's DEFLATE-style codec: LZ77
// match finding over a sliding window followed by canonical Huffman
// coding of the literal/length/distance symbol stream, plus the PNG
// scanline specialization that filters pixel rows before coding.
//
// The container is deliberately not a DEFLATE bitstream. It borrows
// DEFLATE's alphabets — literals 0–255, end-of-block 256, length
// codes 257–285 with extra bits, thirty distance codes with extra
// bits — but frames blocks byte-aligned with explicit lengths, which
// keeps the multi-threaded strip path trivially seekable. A stream
// is a sequence of blocks, each introduced by a header byte (bit 0:
// final, bit 1: coded). A stored block carries a 16-bit length and
// raw bytes; level 0 emits only stored blocks and therefore cannot
// fail on pathological input. A coded block carries its uncompressed
// length, the two code-length tables that rebuild its canonical
// Huffman tables, and an MSB-first bitstream terminated by the
// end-of-block symbol.
//
// Compression effort is tuned the classic way: Level trades match-
// search effort for ratio, WindowBits sets the match window, and
// MemLevel sets hash-table memory. A coded block that fails to beat
// stored framing is replaced by a stored block, so output never
// expands beyond Bound.
package flate
