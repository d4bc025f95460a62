// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"fmt"
	"math"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// cellKey addresses one cell of the welding grid.
type cellKey struct {
	x, y, z int64
}

// cellCoordLimit bounds grid coordinates so the float-to-int
// conversion below stays in range. Converting a float beyond the
// integer type's range is implementation-defined in Go, and an
// overflowed coordinate could scatter nearby vertices into unrelated
// cells. Coordinates past the limit all land in the same boundary
// cell, which only widens the candidate set; the Euclidean distance
// check still decides every merge.
const cellCoordLimit = int64(1) << 62

// cellCoord maps one coordinate to its grid cell, clamping extreme
// coordinate/tolerance ratios to the representable range.
func cellCoord(v, tolerance float64) int64 {
	q := math.Floor(v / tolerance)
	if q >= float64(cellCoordLimit) {
		return cellCoordLimit
	}
	if q <= -float64(cellCoordLimit) {
		return -cellCoordLimit
	}
	return int64(q)
}

// Weld merges vertices closer than tolerance into a single
// representative and remaps the index buffer. Candidates are narrowed
// by a spatial hash over cells of tolerance size — a vertex's
// potential duplicates all lie in its own cell or one of the 26
// neighbors — but the merge decision is always the true Euclidean
// distance; the grid never substitutes for it. The earliest vertex in
// input order wins as representative, which makes the operation
// deterministic and idempotent. Triangles that degenerate under the
// remap are dropped. The input mesh is not modified.
func Weld(m *Mesh, tolerance float64) (*Mesh, error) {
	if math.IsNaN(tolerance) || tolerance <= 0 {
		return nil, fmt.Errorf("weld tolerance %v: %w", tolerance, kerr.ErrInvalidParameter)
	}
	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("mesh with no vertices: %w", kerr.ErrEmptyInput)
	}
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3: %w", len(m.Indices), kerr.ErrInvalidParameter)
	}
	for i, index := range m.Indices {
		if int(index) >= len(m.Positions) {
			return nil, fmt.Errorf("index %d at position %d exceeds vertex count %d: %w",
				index, i, len(m.Positions), kerr.ErrInvalidParameter)
		}
	}
	for i, p := range m.Positions {
		if !p.IsFinite() {
			return nil, fmt.Errorf("vertex %d has non-finite coordinates: %w", i, kerr.ErrDegenerateMesh)
		}
	}

	cell := func(p Vector3) cellKey {
		return cellKey{
			x: cellCoord(float64(p.X), tolerance),
			y: cellCoord(float64(p.Y), tolerance),
			z: cellCoord(float64(p.Z), tolerance),
		}
	}

	// grid stores representative output indices per cell.
	grid := make(map[cellKey][]uint32)
	out := &Mesh{}
	remap := make([]uint32, len(m.Positions))
	toleranceSquared := tolerance * tolerance

	for i, p := range m.Positions {
		center := cell(p)
		match := int64(-1)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					neighbors := grid[cellKey{center.x + dx, center.y + dy, center.z + dz}]
					for _, representative := range neighbors {
						q := out.Positions[representative]
						delta := p.Sub(q)
						distanceSquared := float64(delta.X)*float64(delta.X) +
							float64(delta.Y)*float64(delta.Y) +
							float64(delta.Z)*float64(delta.Z)
						if distanceSquared > toleranceSquared {
							continue
						}
						// First-seen wins: among in-range candidates,
						// the lowest output index is the earliest
						// surviving vertex.
						if match < 0 || int64(representative) < match {
							match = int64(representative)
						}
					}
				}
			}
		}

		if match >= 0 {
			remap[i] = uint32(match)
			continue
		}
		representative := uint32(len(out.Positions))
		out.Positions = append(out.Positions, p)
		grid[center] = append(grid[center], representative)
		remap[i] = representative
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0 := remap[m.Indices[t]]
		i1 := remap[m.Indices[t+1]]
		i2 := remap[m.Indices[t+2]]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		out.Indices = append(out.Indices, i0, i1, i2)
	}
	return out, nil
}
