// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"math"
	"testing"
)

// tetrahedronMesh returns a closed regular tetrahedron: 4 vertices,
// 4 triangles.
func tetrahedronMesh() *Mesh {
	return &Mesh{
		Positions: []Vector3{
			{1, 1, 1},
			{1, -1, -1},
			{-1, 1, -1},
			{-1, -1, 1},
		},
		Indices: []uint32{
			0, 1, 2,
			0, 3, 1,
			0, 2, 3,
			1, 3, 2,
		},
	}
}

// gridMesh returns an open planar grid of n by n vertices in the XY
// plane: 2*(n-1)^2 triangles with a square boundary.
func gridMesh(n int) *Mesh {
	m := &Mesh{}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Positions = append(m.Positions, Vector3{float32(x), float32(y), 0})
		}
	}
	at := func(x, y int) uint32 { return uint32(y*n + x) }
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			a, b := at(x, y), at(x+1, y)
			c, d := at(x, y+1), at(x+1, y+1)
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	return m
}

// sphereMesh returns a closed unit UV sphere with
// 2*segments*(stacks-1) triangles.
func sphereMesh(stacks, segments int) *Mesh {
	m := &Mesh{}
	m.Positions = append(m.Positions, Vector3{0, 1, 0})
	for i := 1; i < stacks; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Positions = append(m.Positions, Vector3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			})
		}
	}
	bottom := uint32(len(m.Positions))
	m.Positions = append(m.Positions, Vector3{0, -1, 0})

	ring := func(i, j int) uint32 { return uint32(1 + (i-1)*segments + j%segments) }
	for j := 0; j < segments; j++ {
		m.Indices = append(m.Indices, 0, ring(1, j+1), ring(1, j))
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < segments; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j), ring(i+1, j+1)
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	for j := 0; j < segments; j++ {
		m.Indices = append(m.Indices, bottom, ring(stacks-1, j), ring(stacks-1, j+1))
	}
	return m
}

// cubeCorners are the 8 vertices of a unit cube; cubeTriangles index
// them as 12 triangles covering the 6 faces.
var cubeCorners = []Vector3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

var cubeTriangles = []uint32{
	0, 2, 1, 0, 3, 2,
	4, 5, 6, 4, 6, 7,
	0, 1, 5, 0, 5, 4,
	2, 3, 7, 2, 7, 6,
	0, 4, 7, 0, 7, 3,
	1, 2, 6, 1, 6, 5,
}

// cubeMesh returns a welded closed cube: 8 vertices, 12 triangles.
func cubeMesh() *Mesh {
	m := &Mesh{
		Positions: append([]Vector3(nil), cubeCorners...),
		Indices:   append([]uint32(nil), cubeTriangles...),
	}
	return m
}

// cubeSoupMesh returns the same cube as unindexed triangle soup: every
// triangle carries its own three vertices, so each corner appears
// several times.
func cubeSoupMesh() *Mesh {
	m := &Mesh{}
	for _, index := range cubeTriangles {
		m.Indices = append(m.Indices, uint32(len(m.Positions)))
		m.Positions = append(m.Positions, cubeCorners[index])
	}
	return m
}

func TestValidateTopologyCleanMeshes(t *testing.T) {
	tests := []struct {
		name          string
		mesh          *Mesh
		boundaryEdges int
	}{
		{"tetrahedron", tetrahedronMesh(), 0},
		{"cube", cubeMesh(), 0},
		{"sphere", sphereMesh(11, 12), 0},
		{"open grid", gridMesh(4), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateTopology(tt.mesh)
			if !report.Valid() {
				t.Fatalf("Valid() = false, report %+v", report)
			}
			if report.BoundaryEdges != tt.boundaryEdges {
				t.Errorf("BoundaryEdges = %d, want %d", report.BoundaryEdges, tt.boundaryEdges)
			}
			if report.VertexCount != len(tt.mesh.Positions) {
				t.Errorf("VertexCount = %d, want %d", report.VertexCount, len(tt.mesh.Positions))
			}
			if report.TriangleCount != tt.mesh.TriangleCount() {
				t.Errorf("TriangleCount = %d, want %d", report.TriangleCount, tt.mesh.TriangleCount())
			}
		})
	}
}

func TestValidateTopologyDefects(t *testing.T) {
	t.Run("out of range index", func(t *testing.T) {
		m := tetrahedronMesh()
		m.Indices[0] = 99
		report := ValidateTopology(m)
		if report.OutOfRangeIndices != 1 {
			t.Errorf("OutOfRangeIndices = %d, want 1", report.OutOfRangeIndices)
		}
		if report.Valid() {
			t.Error("Valid() = true for mesh with out-of-range index")
		}
	})

	t.Run("repeated index triangle", func(t *testing.T) {
		m := tetrahedronMesh()
		m.Indices = append(m.Indices, 0, 0, 1)
		report := ValidateTopology(m)
		if report.DegenerateTriangles != 1 {
			t.Errorf("DegenerateTriangles = %d, want 1", report.DegenerateTriangles)
		}
	})

	t.Run("zero area triangle", func(t *testing.T) {
		m := &Mesh{
			Positions: []Vector3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
			Indices:   []uint32{0, 1, 2},
		}
		report := ValidateTopology(m)
		if report.DegenerateTriangles != 1 {
			t.Errorf("DegenerateTriangles = %d, want 1", report.DegenerateTriangles)
		}
	})

	t.Run("non-finite vertex", func(t *testing.T) {
		m := tetrahedronMesh()
		m.Positions[2].Y = float32(math.NaN())
		report := ValidateTopology(m)
		if report.NonFiniteVertices != 1 {
			t.Errorf("NonFiniteVertices = %d, want 1", report.NonFiniteVertices)
		}
	})

	t.Run("non-manifold edge", func(t *testing.T) {
		m := tetrahedronMesh()
		// A fifth triangle fanning off edge 0-1 makes that edge
		// shared by three faces.
		m.Positions = append(m.Positions, Vector3{3, 3, 3})
		m.Indices = append(m.Indices, 0, 1, 4)
		report := ValidateTopology(m)
		if report.NonManifoldEdges != 1 {
			t.Errorf("NonManifoldEdges = %d, want 1", report.NonManifoldEdges)
		}
	})

	t.Run("dangling indices", func(t *testing.T) {
		m := tetrahedronMesh()
		m.Indices = append(m.Indices, 0, 1)
		report := ValidateTopology(m)
		if report.DanglingIndices != 2 {
			t.Errorf("DanglingIndices = %d, want 2", report.DanglingIndices)
		}
		if report.Valid() {
			t.Error("Valid() = true for mesh with dangling indices")
		}
	})
}

func TestCloneIsIndependent(t *testing.T) {
	m := tetrahedronMesh()
	clone := m.Clone()
	clone.Positions[0].X = 42
	clone.Indices[0] = 3
	if m.Positions[0].X == 42 || m.Indices[0] == 3 {
		t.Error("mutating the clone changed the original")
	}
}
