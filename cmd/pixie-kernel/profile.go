// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile supplies defaults for command flags. Flags set explicitly
// on the command line always win; zero values in the profile mean
// "use the built-in default".
type Profile struct {
	Compress CompressProfile `yaml:"compress"`
	Mesh     MeshProfile     `yaml:"mesh"`
	Train    TrainProfile    `yaml:"train"`
}

// CompressProfile configures the compress command.
type CompressProfile struct {
	// Codec names the frame codec: none, huffman, deflate, lz4,
	// zstd, or auto for probe-based selection.
	Codec string `yaml:"codec"`

	// DeflateLevel is the deflate effort, 1 (fast) to 9 (thorough).
	DeflateLevel int `yaml:"deflate_level"`

	// ZstdLevel is the zstd effort, 1 to 22.
	ZstdLevel int `yaml:"zstd_level"`

	// ZstdWindowLog bounds the zstd match window, 10 to 27.
	ZstdWindowLog int `yaml:"zstd_window_log"`

	// LZ4Acceleration trades LZ4 ratio for speed; 1 is strongest.
	LZ4Acceleration int `yaml:"lz4_acceleration"`
}

// MeshProfile configures the decimate and weld commands.
type MeshProfile struct {
	// Ratio is the decimation target as a fraction of the input
	// triangle count, in (0, 1].
	Ratio float64 `yaml:"ratio"`

	// PreserveBoundary keeps open-mesh silhouettes intact.
	PreserveBoundary bool `yaml:"preserve_boundary"`

	// NormalFlipLimit rejects collapses folding triangles past this
	// normal-agreement threshold.
	NormalFlipLimit float64 `yaml:"normal_flip_limit"`

	// WeldTolerance is the merge distance for the weld command.
	WeldTolerance float64 `yaml:"weld_tolerance"`
}

// TrainProfile configures the train command.
type TrainProfile struct {
	// MaxSize bounds the trained dictionary in bytes.
	MaxSize int `yaml:"max_size"`

	// HashBits sizes the n-gram lookup table, 8 to 24.
	HashBits int `yaml:"hash_bits"`
}

// LoadProfile reads and decodes a YAML profile. Unknown keys are
// rejected so a typo cannot silently fall back to defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &profile, nil
}
