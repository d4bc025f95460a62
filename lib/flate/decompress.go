// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package flate

import (
	"encoding/binary"
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/huffman"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Decompress decodes a block stream produced by Compress into dst and
// returns the number of bytes written. dst must be at least as large
// as the original input; the caller typically records that size
// alongside the compressed payload.
func Decompress(input, dst []byte) (int, error) {
	d := &decompressor{src: input, dst: dst}
	for {
		final, err := d.block()
		if err != nil {
			return 0, err
		}
		if final {
			return d.written, nil
		}
	}
}

type decompressor struct {
	src     []byte
	pos     int
	dst     []byte
	written int
}

func (d *decompressor) need(n int) error {
	if d.pos+n > len(d.src) {
		return fmt.Errorf("block needs %d bytes, %d remain: %w",
			n, len(d.src)-d.pos, kerr.ErrUnexpectedEndOfStream)
	}
	return nil
}

// block decodes one block and reports whether it carried the final
// flag.
func (d *decompressor) block() (bool, error) {
	if err := d.need(1); err != nil {
		return false, err
	}
	header := d.src[d.pos]
	d.pos++
	if header&^0x03 != 0 {
		return false, fmt.Errorf("block header %#02x has reserved bits set: %w", header, kerr.ErrInvalidCode)
	}
	final := header&0x01 != 0

	if header&0x02 == 0 {
		return final, d.storedBlock()
	}
	return final, d.codedBlock()
}

func (d *decompressor) storedBlock() error {
	if err := d.need(2); err != nil {
		return err
	}
	n := int(binary.LittleEndian.Uint16(d.src[d.pos:]))
	d.pos += 2
	if err := d.need(n); err != nil {
		return err
	}
	if d.written+n > len(d.dst) {
		return fmt.Errorf("output needs %d bytes, capacity %d: %w",
			d.written+n, len(d.dst), kerr.ErrOutputBufferTooSmall)
	}
	copy(d.dst[d.written:], d.src[d.pos:d.pos+n])
	d.pos += n
	d.written += n
	return nil
}

func (d *decompressor) codedBlock() error {
	if err := d.need(4); err != nil {
		return err
	}
	originalLength := int(binary.LittleEndian.Uint32(d.src[d.pos:]))
	d.pos += 4

	litLengths, err := d.lengths16(litLenAlphabet)
	if err != nil {
		return fmt.Errorf("literal/length table: %w", err)
	}
	distLengths, err := d.lengths8(distAlphabet)
	if err != nil {
		return fmt.Errorf("distance table: %w", err)
	}

	litTable, err := huffman.TableFromLengths(litLengths)
	if err != nil {
		return fmt.Errorf("literal/length table: %w", err)
	}
	var distTable *huffman.Table
	if len(distLengths) > 0 {
		distTable, err = huffman.TableFromLengths(distLengths)
		if err != nil {
			return fmt.Errorf("distance table: %w", err)
		}
	}

	if err := d.need(4); err != nil {
		return err
	}
	codedLength := int(binary.LittleEndian.Uint32(d.src[d.pos:]))
	d.pos += 4
	if err := d.need(codedLength); err != nil {
		return err
	}
	reader := newBitReader(d.src[d.pos : d.pos+codedLength])
	d.pos += codedLength

	blockEnd := d.written + originalLength
	if blockEnd > len(d.dst) {
		return fmt.Errorf("output needs %d bytes, capacity %d: %w",
			blockEnd, len(d.dst), kerr.ErrOutputBufferTooSmall)
	}

	for {
		symbol, err := decodeSymbol(reader, litTable)
		if err != nil {
			return err
		}
		switch {
		case symbol < endOfBlock:
			if d.written >= blockEnd {
				return fmt.Errorf("block overruns its declared length %d: %w", originalLength, kerr.ErrInvalidCode)
			}
			d.dst[d.written] = byte(symbol)
			d.written++

		case symbol == endOfBlock:
			if d.written != blockEnd {
				return fmt.Errorf("block produced %d of %d declared bytes: %w",
					d.written-(blockEnd-originalLength), originalLength, kerr.ErrInvalidCode)
			}
			return nil

		default:
			if err := d.match(reader, symbol, distTable, blockEnd); err != nil {
				return err
			}
		}
	}
}

// match decodes the extra bits and distance of one length symbol and
// copies the referenced span. Overlapping copies are byte-wise so
// run-length references (distance < length) reproduce correctly.
func (d *decompressor) match(reader *bitReader, symbol uint16, distTable *huffman.Table, blockEnd int) error {
	index := int(symbol) - 257
	if index >= len(lengthBase) {
		return fmt.Errorf("length symbol %d out of range: %w", symbol, kerr.ErrInvalidCode)
	}
	extra, err := reader.readBits(lengthExtraBits[index])
	if err != nil {
		return err
	}
	length := int(lengthBase[index]) + int(extra)

	if distTable == nil {
		return fmt.Errorf("match without a distance table: %w", kerr.ErrInvalidCode)
	}
	distSymbol, err := decodeSymbol(reader, distTable)
	if err != nil {
		return err
	}
	if int(distSymbol) >= len(distBase) {
		return fmt.Errorf("distance symbol %d out of range: %w", distSymbol, kerr.ErrInvalidCode)
	}
	distExtra, err := reader.readBits(distExtraBits[distSymbol])
	if err != nil {
		return err
	}
	distance := int(distBase[distSymbol]) + int(distExtra)

	if distance > d.written {
		return fmt.Errorf("distance %d reaches before output start %d: %w",
			distance, d.written, kerr.ErrInvalidCode)
	}
	if d.written+length > blockEnd {
		return fmt.Errorf("match overruns block by %d bytes: %w",
			d.written+length-blockEnd, kerr.ErrInvalidCode)
	}
	src := d.written - distance
	for i := 0; i < length; i++ {
		d.dst[d.written] = d.dst[src+i]
		d.written++
	}
	return nil
}

// lengths16 reads a 16-bit count and that many code lengths.
func (d *decompressor) lengths16(maxCount int) ([]uint8, error) {
	if err := d.need(2); err != nil {
		return nil, err
	}
	count := int(binary.LittleEndian.Uint16(d.src[d.pos:]))
	d.pos += 2
	return d.lengthBytes(count, maxCount)
}

// lengths8 reads an 8-bit count and that many code lengths.
func (d *decompressor) lengths8(maxCount int) ([]uint8, error) {
	if err := d.need(1); err != nil {
		return nil, err
	}
	count := int(d.src[d.pos])
	d.pos++
	return d.lengthBytes(count, maxCount)
}

func (d *decompressor) lengthBytes(count, maxCount int) ([]uint8, error) {
	if count > maxCount {
		return nil, fmt.Errorf("%d code lengths exceed alphabet size %d: %w", count, maxCount, kerr.ErrInvalidCode)
	}
	if err := d.need(count); err != nil {
		return nil, err
	}
	lengths := make([]uint8, count)
	copy(lengths, d.src[d.pos:d.pos+count])
	d.pos += count
	return lengths, nil
}

// decodeSymbol walks the table one bit at a time until a codeword
// completes.
func decodeSymbol(reader *bitReader, table *huffman.Table) (uint16, error) {
	walker := huffman.NewWalker(table)
	for {
		bit, err := reader.readBit()
		if err != nil {
			return 0, err
		}
		symbol, done, err := walker.Step(bit)
		if err != nil {
			return 0, err
		}
		if done {
			return symbol, nil
		}
	}
}
