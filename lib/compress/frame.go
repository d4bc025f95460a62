// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/rmguney/pixie-juice-sub001/lib/codec"
	"github.com/rmguney/pixie-juice-sub001/lib/flate"
	"github.com/rmguney/pixie-juice-sub001/lib/huffman"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// frameVersion guards the envelope layout. Bump on any incompatible
// change to frameEnvelope.
const frameVersion = 1

// frameDomainKey is the BLAKE3 keyed-hash key for frame digests. A
// fixed constant — changing it invalidates every stored frame. The
// byte values are the ASCII encoding of the domain name, zero-padded
// to 32 bytes.
var frameDomainKey = [32]byte{
	'p', 'i', 'x', 'i', 'e', '.', 'f', 'r', 'a', 'm', 'e',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// frameEnvelope is the CBOR frame layout. The digest covers the
// uncompressed bytes, so corruption is caught no matter which codec
// carried the payload.
type frameEnvelope struct {
	Version uint8  `cbor:"version"`
	Codec   uint8  `cbor:"codec"`
	Size    uint64 `cbor:"size"`
	Digest  []byte `cbor:"digest"`
	Payload []byte `cbor:"payload"`
}

// FrameOptions carries per-codec tuning for EncodeFrame. Zero values
// select each codec's defaults.
type FrameOptions struct {
	Deflate         flate.Options
	Zstd            ZstdOptions
	LZ4Acceleration int
}

func frameDigest(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(frameDomainKey[:])
	if err != nil {
		panic("compress: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// EncodeFrame compresses data with the requested codec and wraps it
// in a self-describing frame. When the codec cannot shrink the data
// (or the data is empty), the frame silently downgrades to CodecNone —
// a frame is never larger than stored framing plus the fixed header.
// CodecDict is rejected here: dictionary streams only decode against
// a matching trained dictionary, which a self-describing frame cannot
// carry.
func EncodeFrame(data []byte, requested Codec, opts FrameOptions) ([]byte, error) {
	payload, effective, err := encodePayload(data, requested, opts)
	if err != nil {
		return nil, err
	}

	digest := frameDigest(data)
	encoded, err := codec.Marshal(frameEnvelope{
		Version: frameVersion,
		Codec:   uint8(effective),
		Size:    uint64(len(data)),
		Digest:  digest[:],
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	return encoded, nil
}

func encodePayload(data []byte, requested Codec, opts FrameOptions) ([]byte, Codec, error) {
	if len(data) == 0 {
		return nil, CodecNone, nil
	}

	switch requested {
	case CodecNone:
		return data, CodecNone, nil

	case CodecHuffman:
		payload, err := encodeHuffmanPayload(data)
		if errors.Is(err, kerr.ErrDegenerateTable) || errors.Is(err, ErrIncompressible) {
			return data, CodecNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return payload, CodecHuffman, nil

	case CodecDeflate:
		// A zero Options means "default effort" here, not the stored-only
		// level 0 it means on flate.Compress directly.
		deflateOpts := opts.Deflate
		if deflateOpts == (flate.Options{}) {
			deflateOpts = flate.DefaultOptions()
		}
		dst := make([]byte, flate.Bound(len(data)))
		n, err := flate.Compress(data, dst, deflateOpts)
		if err != nil {
			return nil, 0, err
		}
		if n >= len(data) {
			return data, CodecNone, nil
		}
		return dst[:n], CodecDeflate, nil

	case CodecLZ4:
		acceleration := opts.LZ4Acceleration
		if acceleration == 0 {
			acceleration = LZ4MinAcceleration
		}
		payload, err := CompressLZ4(data, acceleration)
		if errors.Is(err, ErrIncompressible) {
			return data, CodecNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return payload, CodecLZ4, nil

	case CodecZstd:
		payload, err := CompressZstd(data, opts.Zstd)
		if errors.Is(err, ErrIncompressible) {
			return data, CodecNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return payload, CodecZstd, nil

	case CodecDict:
		return nil, 0, fmt.Errorf("dictionary streams cannot be framed without their dictionary: %w", kerr.ErrInvalidParameter)

	default:
		return nil, 0, fmt.Errorf("codec %s cannot be framed: %w", requested, kerr.ErrInvalidParameter)
	}
}

// DecodeFrame unwraps a frame, decompresses its payload, and verifies
// the embedded digest. Returns the original bytes and the codec that
// actually carried them.
func DecodeFrame(encoded []byte) ([]byte, Codec, error) {
	var envelope frameEnvelope
	if err := codec.Unmarshal(encoded, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decoding frame: %v: %w", err, kerr.ErrInvalidCode)
	}
	if envelope.Version != frameVersion {
		return nil, 0, fmt.Errorf("frame version %d, supported %d: %w",
			envelope.Version, frameVersion, kerr.ErrInvalidParameter)
	}
	size := int(envelope.Size)
	carried := Codec(envelope.Codec)

	var data []byte
	var err error
	switch carried {
	case CodecNone:
		data = envelope.Payload
		if len(data) != size {
			return nil, 0, fmt.Errorf("stored payload is %d bytes, header says %d: %w",
				len(data), size, kerr.ErrInvalidCode)
		}
	case CodecHuffman:
		data, err = decodeHuffmanPayload(envelope.Payload, size)
	case CodecDeflate:
		data = make([]byte, size)
		var n int
		n, err = flate.Decompress(envelope.Payload, data)
		if err == nil && n != size {
			err = fmt.Errorf("deflate payload produced %d bytes, header says %d: %w", n, size, kerr.ErrInvalidCode)
		}
	case CodecLZ4:
		data, err = DecompressLZ4(envelope.Payload, size)
	case CodecZstd:
		data, err = DecompressZstd(envelope.Payload, size)
	default:
		return nil, 0, fmt.Errorf("frame carries unknown codec %d: %w", envelope.Codec, kerr.ErrInvalidCode)
	}
	if err != nil {
		return nil, 0, err
	}

	digest := frameDigest(data)
	if !bytes.Equal(envelope.Digest, digest[:]) {
		return nil, 0, fmt.Errorf("frame digest mismatch: %w", kerr.ErrInvalidCode)
	}
	return data, carried, nil
}

// CompressHuffman encodes data as a self-contained entropy-coded
// block: code-length count, code lengths, coded bytes. Decoding needs
// the uncompressed size, which frames carry in their envelope and
// bare callers must supply themselves. Fails with ErrIncompressible
// when table overhead erases the entropy win.
func CompressHuffman(data []byte) ([]byte, error) {
	return encodeHuffmanPayload(data)
}

// DecompressHuffman reverses CompressHuffman.
func DecompressHuffman(payload []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize < 0 {
		return nil, fmt.Errorf("uncompressed size %d: %w", uncompressedSize, kerr.ErrInvalidParameter)
	}
	return decodeHuffmanPayload(payload, uncompressedSize)
}

// encodeHuffmanPayload serializes a raw Huffman stream: code-length
// count, code lengths, coded bytes. Fails with ErrIncompressible when
// table overhead erases the entropy win.
func encodeHuffmanPayload(data []byte) ([]byte, error) {
	table, err := huffman.BuildTable(huffman.Histogram(data))
	if err != nil {
		return nil, err
	}
	lengths := table.CodeLengths()

	coded := make([]byte, table.EncodedBound(len(data)))
	n, err := huffman.Encode(data, table, coded)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 2+len(lengths)+n)
	binary.LittleEndian.PutUint16(payload, uint16(len(lengths)))
	copy(payload[2:], lengths)
	copy(payload[2+len(lengths):], coded[:n])
	if len(payload) >= len(data) {
		return nil, ErrIncompressible
	}
	return payload, nil
}

func decodeHuffmanPayload(payload []byte, size int) ([]byte, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("huffman payload header truncated: %w", kerr.ErrUnexpectedEndOfStream)
	}
	count := int(binary.LittleEndian.Uint16(payload))
	if count > huffman.MaxSymbols || 2+count > len(payload) {
		return nil, fmt.Errorf("huffman payload carries %d code lengths: %w", count, kerr.ErrInvalidCode)
	}
	table, err := huffman.TableFromLengths(payload[2 : 2+count])
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	n, err := huffman.Decode(payload[2+count:], table, data, size)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}
