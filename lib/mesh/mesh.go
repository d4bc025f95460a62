// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"fmt"
	"math"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Vector3 is a float32 position or direction.
type Vector3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of v and o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vector3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// IsFinite reports whether all components are finite numbers.
func (v Vector3) IsFinite() bool {
	return !math.IsNaN(float64(v.X)) && !math.IsInf(float64(v.X), 0) &&
		!math.IsNaN(float64(v.Y)) && !math.IsInf(float64(v.Y), 0) &&
		!math.IsNaN(float64(v.Z)) && !math.IsInf(float64(v.Z), 0)
}

// Mesh is an indexed triangle mesh: three consecutive indices form
// one triangle.
type Mesh struct {
	Positions []Vector3
	Indices   []uint32
}

// TriangleCount returns the number of whole triangles in the index
// buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Positions: make([]Vector3, len(m.Positions)),
		Indices:   make([]uint32, len(m.Indices)),
	}
	copy(out.Positions, m.Positions)
	copy(out.Indices, m.Indices)
	return out
}

// checkInput validates the invariants every simplification operation
// relies on: a non-empty triangle list, index bounds, a whole number
// of triangles, and finite coordinates. Input is attacker-controlled,
// so these run before any geometry is touched.
func (m *Mesh) checkInput() error {
	if len(m.Positions) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("mesh with %d vertices and %d indices: %w",
			len(m.Positions), len(m.Indices), kerr.ErrEmptyInput)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3: %w", len(m.Indices), kerr.ErrInvalidParameter)
	}
	for i, index := range m.Indices {
		if int(index) >= len(m.Positions) {
			return fmt.Errorf("index %d at position %d exceeds vertex count %d: %w",
				index, i, len(m.Positions), kerr.ErrInvalidParameter)
		}
	}
	for i, p := range m.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("vertex %d has non-finite coordinates: %w", i, kerr.ErrDegenerateMesh)
		}
	}
	return nil
}

// triangleArea2 returns twice the area of triangle abc.
func triangleArea2(a, b, c Vector3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length()
}
