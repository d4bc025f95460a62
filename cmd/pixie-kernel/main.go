// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// pixie-kernel is the command-line face of the media optimization
// kernel: compression framing, stream analysis, dictionary training,
// and mesh simplification over files on disk.
//
// Usage:
//
//	pixie-kernel compress   --in raw.bin --out packed.pxf [--codec zstd]
//	pixie-kernel decompress --in packed.pxf --out raw.bin
//	pixie-kernel analyze    --in raw.bin
//	pixie-kernel train      --in corpus.bin --out table.pxd
//	pixie-kernel decimate   --in model.obj --out small.obj --ratio 0.5
//	pixie-kernel weld       --in soup.obj --out indexed.obj
//
// Defaults for every flag can come from a YAML profile (--profile);
// explicitly set flags win over the profile. Logs are JSON records
// on stderr, results go to stdout or --out.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "compress":
		return runCompress(args[1:])
	case "decompress":
		return runDecompress(args[1:])
	case "analyze":
		return runAnalyze(args[1:])
	case "train":
		return runTrain(args[1:])
	case "decimate":
		return runDecimate(args[1:])
	case "weld":
		return runWeld(args[1:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	}
	printUsage()
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage() {
	fmt.Fprint(os.Stderr, `pixie-kernel — media optimization kernel CLI.

Commands:
  compress    wrap a file in a checksummed compression frame
  decompress  unwrap a compression frame
  analyze     report entropy, histogram, and codec suggestion
  train       train a dictionary from a corpus file
  decimate    reduce a mesh's triangle count (OBJ in, OBJ out)
  weld        merge duplicate mesh vertices (OBJ in, OBJ out)

Run "pixie-kernel <command> --help" for command flags.
`)
}

// newLogger builds the stderr JSON logger shared by all commands.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseWithProfile registers the flags every command shares, parses
// args, and loads the YAML profile when one was named. Commands read
// values afterwards with the flag set's Get accessors; a flag the
// user did not set explicitly falls back to the profile through
// flagChanged checks in each command.
func parseWithProfile(flagSet *pflag.FlagSet, args []string) (*Profile, error) {
	profilePath := flagSet.String("profile", "", "YAML profile supplying flag defaults")
	flagSet.String("in", "", "input file (required)")
	flagSet.String("out", "", "output file")
	flagSet.BoolP("verbose", "v", false, "debug logging")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if *profilePath == "" {
		return &Profile{}, nil
	}
	profile, err := LoadProfile(*profilePath)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", *profilePath, err)
	}
	return profile, nil
}

func readInput(flagSet *pflag.FlagSet) ([]byte, string, error) {
	inPath, err := flagSet.GetString("in")
	if err != nil {
		return nil, "", err
	}
	if inPath == "" {
		return nil, "", fmt.Errorf("--in is required")
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, "", err
	}
	return data, inPath, nil
}

func writeOutput(flagSet *pflag.FlagSet, data []byte) error {
	outPath, err := flagSet.GetString("out")
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
