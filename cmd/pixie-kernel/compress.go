// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rmguney/pixie-juice-sub001/lib/compress"
	"github.com/rmguney/pixie-juice-sub001/lib/dict"
	"github.com/rmguney/pixie-juice-sub001/lib/flate"
)

func runCompress(args []string) error {
	flagSet := pflag.NewFlagSet("compress", pflag.ContinueOnError)
	codecName := flagSet.String("codec", "auto", "frame codec: auto, none, huffman, deflate, lz4, zstd")
	deflateLevel := flagSet.Int("deflate-level", 0, "deflate effort 1..9 (0 = default)")
	zstdLevel := flagSet.Int("zstd-level", 0, "zstd effort 1..22 (0 = default)")
	zstdWindowLog := flagSet.Int("zstd-window-log", 0, "zstd window log 10..27 (0 = default)")
	lz4Acceleration := flagSet.Int("lz4-acceleration", 0, "lz4 acceleration, 1 = strongest (0 = default)")

	profile, err := parseWithProfile(flagSet, args)
	if err != nil {
		return err
	}
	verbose, _ := flagSet.GetBool("verbose")
	logger := newLogger(verbose)

	if !flagSet.Changed("codec") && profile.Compress.Codec != "" {
		*codecName = profile.Compress.Codec
	}
	if !flagSet.Changed("deflate-level") && profile.Compress.DeflateLevel != 0 {
		*deflateLevel = profile.Compress.DeflateLevel
	}
	if !flagSet.Changed("zstd-level") && profile.Compress.ZstdLevel != 0 {
		*zstdLevel = profile.Compress.ZstdLevel
	}
	if !flagSet.Changed("zstd-window-log") && profile.Compress.ZstdWindowLog != 0 {
		*zstdWindowLog = profile.Compress.ZstdWindowLog
	}
	if !flagSet.Changed("lz4-acceleration") && profile.Compress.LZ4Acceleration != 0 {
		*lz4Acceleration = profile.Compress.LZ4Acceleration
	}

	data, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}

	var codec compress.Codec
	if *codecName == "auto" {
		codec = compress.Select(data)
		logger.Debug("codec selected by probe", "codec", codec.String())
	} else {
		codec, err = compress.ParseCodec(*codecName)
		if err != nil {
			return err
		}
	}

	opts := compress.FrameOptions{
		Deflate:         flate.Options{Level: *deflateLevel},
		Zstd:            compress.ZstdOptions{Level: *zstdLevel, WindowLog: *zstdWindowLog},
		LZ4Acceleration: *lz4Acceleration,
	}
	frame, err := compress.EncodeFrame(data, codec, opts)
	if err != nil {
		return fmt.Errorf("compress %s: %w", inPath, err)
	}

	logger.Info("frame encoded", "input_bytes", len(data), "frame_bytes", len(frame),
		"codec", codec.String())
	return writeOutput(flagSet, frame)
}

func runDecompress(args []string) error {
	flagSet := pflag.NewFlagSet("decompress", pflag.ContinueOnError)
	if _, err := parseWithProfile(flagSet, args); err != nil {
		return err
	}
	verbose, _ := flagSet.GetBool("verbose")
	logger := newLogger(verbose)

	frame, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}
	data, codec, err := compress.DecodeFrame(frame)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", inPath, err)
	}
	logger.Info("frame decoded", "frame_bytes", len(frame), "output_bytes", len(data),
		"codec", codec.String())
	return writeOutput(flagSet, data)
}

func runAnalyze(args []string) error {
	flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	if _, err := parseWithProfile(flagSet, args); err != nil {
		return err
	}

	data, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}
	stats := compress.Analyze(data)
	suggested := compress.Select(data)

	fmt.Printf("input:            %s (%d bytes)\n", inPath, stats.OriginalSize)
	fmt.Printf("unique bytes:     %d\n", stats.UniqueBytes)
	fmt.Printf("entropy:          %.3f bits/byte\n", stats.Entropy)
	fmt.Printf("predicted ratio:  %.3f\n", stats.PredictedRatio)
	fmt.Printf("predicted size:   %d bytes\n", stats.PredictedSize)
	fmt.Printf("suggested codec:  %s\n", suggested.String())
	return nil
}

func runTrain(args []string) error {
	flagSet := pflag.NewFlagSet("train", pflag.ContinueOnError)
	maxSize := flagSet.Int("max-size", 64<<10, "dictionary size bound in bytes")
	hashBits := flagSet.Int("hash-bits", 0, "n-gram table bits 8..24 (0 = default)")

	profile, err := parseWithProfile(flagSet, args)
	if err != nil {
		return err
	}
	verbose, _ := flagSet.GetBool("verbose")
	logger := newLogger(verbose)

	if !flagSet.Changed("max-size") && profile.Train.MaxSize != 0 {
		*maxSize = profile.Train.MaxSize
	}
	if !flagSet.Changed("hash-bits") && profile.Train.HashBits != 0 {
		*hashBits = profile.Train.HashBits
	}

	corpus, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}
	dictionary, err := dict.Train(corpus, *maxSize, *hashBits)
	if err != nil {
		return fmt.Errorf("train from %s: %w", inPath, err)
	}
	encoded, err := dictionary.MarshalBinary()
	if err != nil {
		return err
	}

	identity := dictionary.Identity()
	logger.Info("dictionary trained", "corpus_bytes", len(corpus),
		"dictionary_bytes", dictionary.Size(), "identity", fmt.Sprintf("%x", identity[:8]))
	fmt.Fprintf(os.Stderr, "trained %d-byte dictionary (identity %x)\n", dictionary.Size(), identity[:8])
	return writeOutput(flagSet, encoded)
}
