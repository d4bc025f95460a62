// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parseOBJ reads the subset of Wavefront OBJ the mesh commands need:
// "v x y z" vertex lines and "f a b c" triangle lines with 1-based,
// possibly slash-qualified, possibly negative indices. Faces with
// more than three corners are fanned into triangles. Everything else
// (normals, texture coordinates, groups, materials) is skipped.
func parseOBJ(data []byte) ([]float32, []uint32, error) {
	var vertices []float32
	var indices []uint32

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNumber)
			}
			for _, field := range fields[1:4] {
				value, err := strconv.ParseFloat(field, 32)
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: coordinate %q: %w", lineNumber, field, err)
				}
				vertices = append(vertices, float32(value))
			}
		case "f":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNumber)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, field := range fields[1:] {
				index, err := parseOBJIndex(field, len(vertices)/3)
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				corners = append(corners, index)
			}
			for i := 1; i+1 < len(corners); i++ {
				indices = append(indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(vertices) == 0 {
		return nil, nil, fmt.Errorf("no vertices found")
	}
	return vertices, indices, nil
}

// parseOBJIndex resolves one face corner: "7", "7/1", "7//3", or a
// negative relative index, into a 0-based vertex index.
func parseOBJIndex(field string, vertexCount int) (uint32, error) {
	if slash := strings.IndexByte(field, '/'); slash >= 0 {
		field = field[:slash]
	}
	value, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", field, err)
	}
	switch {
	case value > 0 && value <= vertexCount:
		return uint32(value - 1), nil
	case value < 0 && -value <= vertexCount:
		return uint32(vertexCount + value), nil
	}
	return 0, fmt.Errorf("face index %d out of range for %d vertices", value, vertexCount)
}

// formatOBJ writes vertices and triangles back out as minimal OBJ.
func formatOBJ(vertices []float32, indices []uint32) []byte {
	var out bytes.Buffer
	for i := 0; i+2 < len(vertices); i += 3 {
		fmt.Fprintf(&out, "v %g %g %g\n", vertices[i], vertices[i+1], vertices[i+2])
	}
	for i := 0; i+2 < len(indices); i += 3 {
		fmt.Fprintf(&out, "f %d %d %d\n", indices[i]+1, indices[i+1]+1, indices[i+2]+1)
	}
	return out.Bytes()
}
