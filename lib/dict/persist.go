// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package dict

import (
	"bytes"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/rmguney/pixie-juice-sub001/lib/codec"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// dictionaryFileVersion guards the on-disk layout. Bump on any
// incompatible change to dictionaryFile.
const dictionaryFileVersion = 1

// dictionaryDomainKey is the BLAKE3 keyed-hash key for dictionary
// identity. A fixed constant — changing it invalidates every stored
// dictionary digest. The byte values are the ASCII encoding of the
// domain name, zero-padded to 32 bytes, so the key is inspectable in
// hex dumps without sacrificing any cryptographic property.
var dictionaryDomainKey = [32]byte{
	'p', 'i', 'x', 'i', 'e', '.', 'd', 'i', 'c', 't', 'i', 'o', 'n', 'a', 'r', 'y',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// dictionaryFile is the CBOR on-disk layout. The digest covers the
// trained bytes only; hashBits is carried so the n-gram table
// rebuilds identically on load.
type dictionaryFile struct {
	Version  uint8  `cbor:"version"`
	HashBits uint8  `cbor:"hash_bits"`
	Data     []byte `cbor:"data"`
	Digest   []byte `cbor:"digest"`
}

// Identity returns the keyed BLAKE3 digest of the trained bytes. Two
// dictionaries with the same identity decompress each other's
// streams.
func (d *Dictionary) Identity() [32]byte {
	return digest(d.data)
}

func digest(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(dictionaryDomainKey[:])
	if err != nil {
		panic("dict: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// MarshalBinary encodes the dictionary as deterministic CBOR with an
// embedded identity digest.
func (d *Dictionary) MarshalBinary() ([]byte, error) {
	identity := d.Identity()
	encoded, err := codec.Marshal(dictionaryFile{
		Version:  dictionaryFileVersion,
		HashBits: uint8(d.hashBits),
		Data:     d.data,
		Digest:   identity[:],
	})
	if err != nil {
		return nil, fmt.Errorf("encoding dictionary: %w", err)
	}
	return encoded, nil
}

// LoadDictionary decodes a dictionary produced by MarshalBinary,
// verifies its identity digest, and rebuilds the n-gram table.
func LoadDictionary(encoded []byte) (*Dictionary, error) {
	var file dictionaryFile
	if err := codec.Unmarshal(encoded, &file); err != nil {
		return nil, fmt.Errorf("decoding dictionary: %w", err)
	}
	if file.Version != dictionaryFileVersion {
		return nil, fmt.Errorf("dictionary file version %d, supported %d: %w",
			file.Version, dictionaryFileVersion, kerr.ErrInvalidParameter)
	}
	if file.HashBits < 8 || file.HashBits > 24 {
		return nil, fmt.Errorf("dictionary hash bits %d outside 8..24: %w", file.HashBits, kerr.ErrInvalidParameter)
	}
	if len(file.Data) == 0 || len(file.Data) > MaxDictionarySize {
		return nil, fmt.Errorf("dictionary payload of %d bytes: %w", len(file.Data), kerr.ErrInvalidParameter)
	}

	expected := digest(file.Data)
	if !bytes.Equal(file.Digest, expected[:]) {
		return nil, fmt.Errorf("dictionary digest mismatch: %w", kerr.ErrInvalidCode)
	}

	d := &Dictionary{data: file.Data, hashBits: uint(file.HashBits)}
	d.buildTable()
	return d, nil
}
