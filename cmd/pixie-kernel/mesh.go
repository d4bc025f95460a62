// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmguney/pixie-juice-sub001/lib/engine"
	"github.com/rmguney/pixie-juice-sub001/lib/mesh"
)

func runDecimate(args []string) error {
	flagSet := pflag.NewFlagSet("decimate", pflag.ContinueOnError)
	ratio := flagSet.Float64("ratio", 0.5, "target triangle fraction in (0, 1]")
	preserveBoundary := flagSet.Bool("preserve-boundary", false, "never move boundary vertices")
	normalFlipLimit := flagSet.Float64("normal-flip-limit", 0, "reject collapses folding normals below this dot product")

	profile, err := parseWithProfile(flagSet, args)
	if err != nil {
		return err
	}
	verbose, _ := flagSet.GetBool("verbose")
	logger := newLogger(verbose)

	if !flagSet.Changed("ratio") && profile.Mesh.Ratio != 0 {
		*ratio = profile.Mesh.Ratio
	}
	if !flagSet.Changed("preserve-boundary") && profile.Mesh.PreserveBoundary {
		*preserveBoundary = true
	}
	if !flagSet.Changed("normal-flip-limit") && profile.Mesh.NormalFlipLimit != 0 {
		*normalFlipLimit = profile.Mesh.NormalFlipLimit
	}

	data, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}
	vertices, indices, err := parseOBJ(data)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	e, err := engine.New(engine.Options{Logger: logger})
	if err != nil {
		return err
	}
	result := e.DecimateMeshQEM(vertices, indices, *ratio, mesh.DecimateOptions{
		PreserveBoundary: *preserveBoundary,
		NormalFlipLimit:  *normalFlipLimit,
	})
	if !result.Success {
		return fmt.Errorf("decimate %s: %s", inPath, result.ErrorMessage)
	}

	logger.Info("mesh decimated",
		"triangles_in", len(indices)/3, "triangles_out", len(result.Indices)/3,
		"vertices_in", len(vertices)/3, "vertices_out", len(result.Vertices)/3)
	output := formatOBJ(result.Vertices, result.Indices)
	if err := engine.FreeMeshResult(result); err != nil {
		return err
	}
	return writeOutput(flagSet, output)
}

func runWeld(args []string) error {
	flagSet := pflag.NewFlagSet("weld", pflag.ContinueOnError)
	tolerance := flagSet.Float64("tolerance", 1e-6, "merge distance")

	profile, err := parseWithProfile(flagSet, args)
	if err != nil {
		return err
	}
	verbose, _ := flagSet.GetBool("verbose")
	logger := newLogger(verbose)

	if !flagSet.Changed("tolerance") && profile.Mesh.WeldTolerance != 0 {
		*tolerance = profile.Mesh.WeldTolerance
	}

	data, inPath, err := readInput(flagSet)
	if err != nil {
		return err
	}
	vertices, indices, err := parseOBJ(data)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	e, err := engine.New(engine.Options{Logger: logger})
	if err != nil {
		return err
	}
	result := e.WeldVerticesSpatial(vertices, indices, *tolerance)
	if !result.Success {
		return fmt.Errorf("weld %s: %s", inPath, result.ErrorMessage)
	}

	logger.Info("mesh welded",
		"vertices_in", len(vertices)/3, "vertices_out", len(result.Vertices)/3,
		"triangles_in", len(indices)/3, "triangles_out", len(result.Indices)/3)
	output := formatOBJ(result.Vertices, result.Indices)
	if err := engine.FreeMeshResult(result); err != nil {
		return err
	}
	return writeOutput(flagSet, output)
}
