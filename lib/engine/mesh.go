// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
	"github.com/rmguney/pixie-juice-sub001/lib/mesh"
)

// MeshResult is the outcome of a geometry operation: flat vertex
// coordinates (x, y, z per vertex) and a triangle index buffer.
// Unlike byte-stream results the output is typed, so it is returned
// as ordinary slices; FreeMeshResult still applies and enforces
// exactly-once release so hosts can treat both result kinds alike.
type MeshResult struct {
	Vertices     []float32
	Indices      []uint32
	Success      bool
	ErrorMessage string

	freed bool
}

// FreeMeshResult releases a mesh result. Freeing a failed result is
// a no-op; freeing a successful result twice is reported as
// ErrInvalidPointer.
func FreeMeshResult(r *MeshResult) error {
	if r == nil || !r.Success {
		return nil
	}
	if r.freed {
		return fmt.Errorf("mesh result freed twice: %w", kerr.ErrInvalidPointer)
	}
	r.freed = true
	r.Vertices = nil
	r.Indices = nil
	return nil
}

// meshFromFlat assembles a kernel mesh from host buffers.
func meshFromFlat(vertices []float32, indices []uint32) (*mesh.Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex buffer length %d is not a multiple of 3: %w",
			len(vertices), kerr.ErrInvalidParameter)
	}
	m := &mesh.Mesh{
		Positions: make([]mesh.Vector3, len(vertices)/3),
		Indices:   append([]uint32(nil), indices...),
	}
	for i := range m.Positions {
		m.Positions[i] = mesh.Vector3{
			X: vertices[3*i],
			Y: vertices[3*i+1],
			Z: vertices[3*i+2],
		}
	}
	return m, nil
}

// flattenMesh converts a kernel mesh back to host buffers.
func flattenMesh(m *mesh.Mesh) ([]float32, []uint32) {
	vertices := make([]float32, 0, 3*len(m.Positions))
	for _, p := range m.Positions {
		vertices = append(vertices, p.X, p.Y, p.Z)
	}
	return vertices, m.Indices
}

// runMesh executes a geometry job and wraps the outcome.
func (e *Engine) runMesh(op string, vertices []float32, indices []uint32,
	transform func(*mesh.Mesh) (*mesh.Mesh, error)) *MeshResult {

	input, err := meshFromFlat(vertices, indices)
	if err == nil {
		var out *mesh.Mesh
		out, err = transform(input)
		if err == nil {
			flatVertices, flatIndices := flattenMesh(out)
			e.logger.Debug("kernel job complete", "op", op,
				"vertices", len(flatVertices)/3, "triangles", len(flatIndices)/3)
			return &MeshResult{
				Vertices: flatVertices,
				Indices:  flatIndices,
				Success:  true,
			}
		}
	}

	if kerr.Fatal(err) {
		e.logger.Error("kernel job aborted", "op", op, "error", err)
	} else {
		e.logger.Warn("kernel job failed", "op", op, "error", err)
	}
	return &MeshResult{ErrorMessage: kerr.BoundMessage(err.Error())}
}

// DecimateMeshQEM reduces the mesh to at most targetRatio of its
// triangles by quadric-error-metric edge collapse.
func (e *Engine) DecimateMeshQEM(vertices []float32, indices []uint32,
	targetRatio float64, opts mesh.DecimateOptions) *MeshResult {
	return e.runMesh("decimate-qem", vertices, indices, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return mesh.Decimate(m, targetRatio, opts)
	})
}

// WeldVerticesSpatial merges vertices closer than tolerance.
func (e *Engine) WeldVerticesSpatial(vertices []float32, indices []uint32, tolerance float64) *MeshResult {
	return e.runMesh("weld-spatial", vertices, indices, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		return mesh.Weld(m, tolerance)
	})
}

// OptimizeMeshVertexCache reorders triangles for post-transform
// vertex cache locality. Vertices pass through untouched.
func (e *Engine) OptimizeMeshVertexCache(vertices []float32, indices []uint32, cacheSize int) *MeshResult {
	return e.runMesh("vertex-cache", vertices, indices, func(m *mesh.Mesh) (*mesh.Mesh, error) {
		reordered, err := mesh.OptimizeVertexCache(m.Indices, len(m.Positions), cacheSize)
		if err != nil {
			return nil, err
		}
		return &mesh.Mesh{Positions: m.Positions, Indices: reordered}, nil
	})
}

// ValidateMeshTopology inspects host buffers and reports every
// defect class found. The only error is a malformed vertex buffer;
// defects in the mesh itself are findings, not failures.
func (e *Engine) ValidateMeshTopology(vertices []float32, indices []uint32) (mesh.TopologyReport, error) {
	m, err := meshFromFlat(vertices, indices)
	if err != nil {
		return mesh.TopologyReport{}, err
	}
	return mesh.ValidateTopology(m), nil
}
