// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

// TopologyReport itemizes the defects found in a mesh. A zero report
// (apart from the counts) is a clean mesh.
type TopologyReport struct {
	VertexCount   int
	TriangleCount int

	// OutOfRangeIndices counts indices referencing vertices that do
	// not exist.
	OutOfRangeIndices int

	// DegenerateTriangles counts triangles with repeated vertex
	// indices or zero area.
	DegenerateTriangles int

	// NonFiniteVertices counts vertices with NaN or infinite
	// coordinates.
	NonFiniteVertices int

	// NonManifoldEdges counts edges shared by more than two
	// triangles.
	NonManifoldEdges int

	// BoundaryEdges counts edges used by exactly one triangle. Not a
	// defect — open meshes are legitimate — but decimation treats
	// these edges specially, so the count is reported.
	BoundaryEdges int

	// DanglingIndices is the remainder of the index buffer that does
	// not form a whole triangle.
	DanglingIndices int
}

// Valid reports whether the mesh is structurally sound: every index
// in range, every coordinate finite, no degenerate triangles, no
// non-manifold edges, no dangling indices.
func (r TopologyReport) Valid() bool {
	return r.OutOfRangeIndices == 0 &&
		r.DegenerateTriangles == 0 &&
		r.NonFiniteVertices == 0 &&
		r.NonManifoldEdges == 0 &&
		r.DanglingIndices == 0
}

// edgeKey is an undirected edge, smaller index first.
type edgeKey struct {
	a, b uint32
}

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// ValidateTopology inspects a mesh and reports every defect class it
// finds. Unlike the simplification operations it never fails: a
// report on garbage input is exactly what callers probing untrusted
// meshes need.
func ValidateTopology(m *Mesh) TopologyReport {
	report := TopologyReport{
		VertexCount:     len(m.Positions),
		TriangleCount:   len(m.Indices) / 3,
		DanglingIndices: len(m.Indices) % 3,
	}

	for _, p := range m.Positions {
		if !p.IsFinite() {
			report.NonFiniteVertices++
		}
	}

	edgeUse := make(map[edgeKey]int)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]

		inRange := true
		for _, index := range [3]uint32{i0, i1, i2} {
			if int(index) >= len(m.Positions) {
				report.OutOfRangeIndices++
				inRange = false
			}
		}
		if !inRange {
			continue
		}

		if i0 == i1 || i1 == i2 || i0 == i2 ||
			triangleArea2(m.Positions[i0], m.Positions[i1], m.Positions[i2]) == 0 {
			report.DegenerateTriangles++
			continue
		}

		edgeUse[makeEdgeKey(i0, i1)]++
		edgeUse[makeEdgeKey(i1, i2)]++
		edgeUse[makeEdgeKey(i0, i2)]++
	}

	for _, uses := range edgeUse {
		switch {
		case uses == 1:
			report.BoundaryEdges++
		case uses > 2:
			report.NonManifoldEdges++
		}
	}
	return report
}
