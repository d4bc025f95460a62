// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package flate

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/huffman"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Options tunes the codec. The zero value of a field selects its
// default.
type Options struct {
	// Level trades match-search effort for ratio: 0 bypasses LZ77
	// entirely and emits stored blocks, 1 is fastest matching, 9
	// searches hardest. Default 6.
	Level int

	// WindowBits sets the sliding-window size to 1<<WindowBits.
	// Valid range 9..15. Default 15 (32 KiB window).
	WindowBits int

	// MemLevel sets match-finder hash memory: the hash table has
	// 1<<(MemLevel+7) entries. Valid range 1..9. Default 8.
	MemLevel int
}

// storedBlockMax is the largest payload of one stored block (16-bit
// length field). Coded blocks chunk input at the same boundary so a
// failed coded block can fall back to exactly one stored block.
const storedBlockMax = 65535

// levelled effort parameters, indexed by level 1..9.
var (
	levelMaxChain   = [10]int{0, 4, 8, 16, 32, 64, 128, 256, 512, 1024}
	levelNiceLength = [10]int{0, 8, 16, 32, 64, 96, 128, 192, 258, 258}
)

// normalize applies defaults and validates ranges.
func (o Options) normalize() (Options, error) {
	// Level 0 is meaningful (stored blocks), so the level default is
	// expressed by DefaultOptions rather than by zero-value mapping.
	if o.Level < 0 || o.Level > 9 {
		return o, fmt.Errorf("compression level %d outside 0..9: %w", o.Level, kerr.ErrInvalidParameter)
	}
	if o.WindowBits == 0 {
		o.WindowBits = 15
	}
	if o.WindowBits < 9 || o.WindowBits > 15 {
		return o, fmt.Errorf("window bits %d outside 9..15: %w", o.WindowBits, kerr.ErrInvalidParameter)
	}
	if o.MemLevel == 0 {
		o.MemLevel = 8
	}
	if o.MemLevel < 1 || o.MemLevel > 9 {
		return o, fmt.Errorf("mem level %d outside 1..9: %w", o.MemLevel, kerr.ErrInvalidParameter)
	}
	return o, nil
}

// DefaultOptions returns the balanced configuration: level 6, 32 KiB
// window, mem level 8.
func DefaultOptions() Options {
	return Options{Level: 6, WindowBits: 15, MemLevel: 8}
}

// Bound returns a dst capacity guaranteed to hold the compression of
// n input bytes at any level: stored-block framing plus a terminator.
func Bound(n int) int {
	blocks := n/storedBlockMax + 1
	return n + 3*blocks + 8
}

// Compress encodes input into dst and returns the number of bytes
// written. dst must be pre-sized by the caller; Bound gives a
// worst-case capacity. Fails with kerr.ErrOutputBufferTooSmall when
// dst is insufficient — the input is never silently truncated.
func Compress(input, dst []byte, opts Options) (int, error) {
	opts, err := opts.normalize()
	if err != nil {
		return 0, err
	}

	c := &compressor{dst: dst, opts: opts}
	if len(input) == 0 {
		if err := c.storedBlock(nil, true); err != nil {
			return 0, err
		}
		return c.pos, nil
	}

	for start := 0; start < len(input); start += storedBlockMax {
		end := start + storedBlockMax
		if end > len(input) {
			end = len(input)
		}
		chunk := input[start:end]
		final := end == len(input)

		if opts.Level == 0 {
			if err := c.storedBlock(chunk, final); err != nil {
				return 0, err
			}
			continue
		}
		if err := c.codedBlockWithFallback(chunk, final); err != nil {
			return 0, err
		}
	}
	return c.pos, nil
}

type compressor struct {
	dst  []byte
	pos  int
	opts Options
}

func (c *compressor) ensure(n int) error {
	if c.pos+n > len(c.dst) {
		return fmt.Errorf("output needs %d bytes, capacity %d: %w",
			c.pos+n, len(c.dst), kerr.ErrOutputBufferTooSmall)
	}
	return nil
}

// storedBlock emits a raw block: header, 16-bit length, payload.
func (c *compressor) storedBlock(chunk []byte, final bool) error {
	if err := c.ensure(3 + len(chunk)); err != nil {
		return err
	}
	header := byte(0)
	if final {
		header |= 1
	}
	c.dst[c.pos] = header
	binary.LittleEndian.PutUint16(c.dst[c.pos+1:], uint16(len(chunk)))
	copy(c.dst[c.pos+3:], chunk)
	c.pos += 3 + len(chunk)
	return nil
}

// codedBlockWithFallback attempts a coded block and falls back to a
// stored block when coding expands the chunk or overruns dst. The
// fallback is what guarantees Bound holds at every level.
func (c *compressor) codedBlockWithFallback(chunk []byte, final bool) error {
	rewind := c.pos
	err := c.codedBlock(chunk, final)
	if err == nil {
		if c.pos-rewind < 3+len(chunk) {
			return nil
		}
		// Coded output is no smaller than stored framing.
	} else if !isOverflow(err) {
		return err
	}
	c.pos = rewind
	return c.storedBlock(chunk, final)
}

func isOverflow(err error) bool {
	// kerr.ErrOutputBufferTooSmall mid-block means "try stored", not
	// "give up": the stored rendition may still fit.
	return errors.Is(err, kerr.ErrOutputBufferTooSmall)
}

// codedBlock tokenizes the chunk with the LZ77 matcher and writes a
// Huffman-coded block: header, uncompressed length, the two
// code-length tables, coded-stream length, bitstream.
func (c *compressor) codedBlock(chunk []byte, final bool) error {
	tokens := tokenize(chunk, c.opts)

	litFreq := make([]uint32, litLenAlphabet)
	distFreq := make([]uint32, distAlphabet)
	litFreq[endOfBlock]++
	matches := 0
	for _, tok := range tokens {
		if tok.length == 0 {
			litFreq[tok.literal]++
			continue
		}
		matches++
		symbol, _, _ := lengthSymbol(tok.length)
		litFreq[symbol]++
		code, _, _ := distCode(tok.distance)
		distFreq[code]++
	}

	litTable, err := huffman.BuildTable(litFreq)
	if err != nil {
		return fmt.Errorf("literal/length table: %w", err)
	}

	var distTable *huffman.Table
	if matches > 0 {
		// A one-distance block cannot form a prefix code; pad the
		// histogram with an adjacent never-emitted code.
		nonzero := 0
		for _, f := range distFreq {
			if f > 0 {
				nonzero++
			}
		}
		if nonzero == 1 {
			for i, f := range distFreq {
				if f > 0 {
					distFreq[(i+1)%distAlphabet]++
					break
				}
			}
		}
		distTable, err = huffman.BuildTable(distFreq)
		if err != nil {
			return fmt.Errorf("distance table: %w", err)
		}
	}

	header := byte(2)
	if final {
		header |= 1
	}
	if err := c.ensure(1 + 4); err != nil {
		return err
	}
	c.dst[c.pos] = header
	binary.LittleEndian.PutUint32(c.dst[c.pos+1:], uint32(len(chunk)))
	c.pos += 5

	if err := c.putLengths16(trimLengths(litTable.CodeLengths())); err != nil {
		return err
	}
	distLengths := []uint8(nil)
	if distTable != nil {
		distLengths = trimLengths(distTable.CodeLengths())
	}
	if err := c.putLengths8(distLengths); err != nil {
		return err
	}

	// Reserve the coded-length field, write the bitstream after it,
	// then backpatch.
	if err := c.ensure(4); err != nil {
		return err
	}
	lengthField := c.pos
	c.pos += 4

	w := newBitWriter(c.dst[c.pos:])
	if err := writeTokens(w, tokens, litTable, distTable); err != nil {
		return err
	}
	if err := w.flush(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(c.dst[lengthField:], uint32(w.pos))
	c.pos += w.pos
	return nil
}

// putLengths16 writes a 16-bit count followed by the lengths.
func (c *compressor) putLengths16(lengths []uint8) error {
	if err := c.ensure(2 + len(lengths)); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(c.dst[c.pos:], uint16(len(lengths)))
	copy(c.dst[c.pos+2:], lengths)
	c.pos += 2 + len(lengths)
	return nil
}

// putLengths8 writes an 8-bit count followed by the lengths.
func (c *compressor) putLengths8(lengths []uint8) error {
	if err := c.ensure(1 + len(lengths)); err != nil {
		return err
	}
	c.dst[c.pos] = uint8(len(lengths))
	copy(c.dst[c.pos+1:], lengths)
	c.pos += 1 + len(lengths)
	return nil
}

// trimLengths drops trailing zero lengths; the decoder rebuilds the
// table over the trimmed alphabet.
func trimLengths(lengths []uint8) []uint8 {
	end := len(lengths)
	for end > 0 && lengths[end-1] == 0 {
		end--
	}
	return lengths[:end]
}

// writeTokens encodes the token stream plus the end-of-block symbol.
func writeTokens(w *bitWriter, tokens []token, litTable, distTable *huffman.Table) error {
	emit := func(table *huffman.Table, symbol uint16) error {
		entry := table.Entry(symbol)
		return w.writeBits(entry.Code, entry.Length)
	}

	for _, tok := range tokens {
		if tok.length == 0 {
			if err := emit(litTable, uint16(tok.literal)); err != nil {
				return err
			}
			continue
		}
		symbol, extra, extraBits := lengthSymbol(tok.length)
		if err := emit(litTable, symbol); err != nil {
			return err
		}
		if extraBits > 0 {
			if err := w.writeBits(extra, extraBits); err != nil {
				return err
			}
		}
		code, distExtra, distBits := distCode(tok.distance)
		if err := emit(distTable, uint16(code)); err != nil {
			return err
		}
		if distBits > 0 {
			if err := w.writeBits(distExtra, distBits); err != nil {
				return err
			}
		}
	}
	return emit(litTable, endOfBlock)
}

// tokenize runs greedy hash-chain LZ77 over one chunk. Matches never
// cross chunk boundaries; the window is bounded by both WindowBits
// and the chunk itself.
func tokenize(chunk []byte, opts Options) []token {
	windowSize := 1 << opts.WindowBits
	hashBits := uint(opts.MemLevel + 7)
	maxChain := levelMaxChain[opts.Level]
	niceLength := levelNiceLength[opts.Level]

	head := make([]int32, 1<<hashBits)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, len(chunk))

	tokens := make([]token, 0, len(chunk)/4)
	pos := 0
	for pos < len(chunk) {
		if pos+minMatch > len(chunk) {
			tokens = append(tokens, token{literal: chunk[pos]})
			pos++
			continue
		}

		h := hash4(chunk[pos:], hashBits)
		bestLength, bestDistance := 0, 0
		candidate := head[h]
		for chain := maxChain; chain > 0 && candidate >= 0; chain-- {
			distance := pos - int(candidate)
			if distance > windowSize {
				break
			}
			length := matchLength(chunk, int(candidate), pos)
			if length > bestLength {
				bestLength = length
				bestDistance = distance
				if length >= niceLength {
					break
				}
			}
			candidate = prev[candidate]
		}

		prev[pos] = head[h]
		head[h] = int32(pos)

		if bestLength >= minMatch {
			tokens = append(tokens, token{length: uint32(bestLength), distance: uint32(bestDistance)})
			// Index the matched span so later positions can reference
			// into it.
			for i := pos + 1; i < pos+bestLength && i+minMatch <= len(chunk); i++ {
				hi := hash4(chunk[i:], hashBits)
				prev[i] = head[hi]
				head[hi] = int32(i)
			}
			pos += bestLength
			continue
		}

		tokens = append(tokens, token{literal: chunk[pos]})
		pos++
	}
	return tokens
}

// hash4 hashes the four bytes at the head of data into hashBits
// buckets (Knuth multiplicative hash).
func hash4(data []byte, hashBits uint) uint32 {
	sequence := binary.LittleEndian.Uint32(data)
	return sequence * 2654435761 >> (32 - hashBits)
}

// matchLength returns the length of the common prefix of
// data[candidate:] and data[pos:], capped at maxMatch.
func matchLength(data []byte, candidate, pos int) int {
	limit := len(data) - pos
	if limit > maxMatch {
		limit = maxMatch
	}
	n := 0
	for n < limit && data[candidate+n] == data[pos+n] {
		n++
	}
	return n
}
