// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// DecimateOptions tunes edge-collapse decimation.
type DecimateOptions struct {
	// PreserveBoundary rejects collapses of boundary edges (edges
	// used by exactly one triangle), keeping open-mesh silhouettes
	// intact at the cost of a higher reachable floor.
	PreserveBoundary bool

	// NormalFlipLimit rejects a collapse when any surviving triangle's
	// normal direction after the collapse has a dot product with its
	// previous direction below this value. Zero (the default) rejects
	// collapses that fold a triangle past perpendicular; raise it for
	// stricter shape preservation.
	NormalFlipLimit float64
}

// Decimate reduces a mesh to at most targetRatio of its original
// triangle count using quadric-error-metric edge collapses. Low-error
// edges collapse first; collapses that would flip a surviving
// triangle's normal, or touch a boundary edge when PreserveBoundary
// is set, are rejected and the next candidate is tried. The input
// mesh is not modified.
func Decimate(m *Mesh, targetRatio float64, opts DecimateOptions) (*Mesh, error) {
	if math.IsNaN(targetRatio) || targetRatio <= 0 || targetRatio > 1 {
		return nil, fmt.Errorf("target ratio %v outside (0, 1]: %w", targetRatio, kerr.ErrInvalidParameter)
	}
	if err := m.checkInput(); err != nil {
		return nil, err
	}

	targetTriangles := int(float64(m.TriangleCount()) * targetRatio)
	if targetTriangles < 1 {
		targetTriangles = 1
	}
	if targetTriangles >= m.TriangleCount() {
		return m.Clone(), nil
	}

	d := newDecimator(m, opts)
	d.run(targetTriangles)
	return d.extract(), nil
}

// quadric is a symmetric 4x4 matrix stored as its upper triangle:
// [a00 a01 a02 a03 a11 a12 a13 a22 a23 a33]. It accumulates squared
// distances to a set of planes; summing two vertices' quadrics gives
// the error metric of their merged vertex.
type quadric [10]float64

func (q *quadric) addPlane(a, b, c, d, weight float64) {
	q[0] += weight * a * a
	q[1] += weight * a * b
	q[2] += weight * a * c
	q[3] += weight * a * d
	q[4] += weight * b * b
	q[5] += weight * b * c
	q[6] += weight * b * d
	q[7] += weight * c * c
	q[8] += weight * c * d
	q[9] += weight * d * d
}

func (q *quadric) add(o *quadric) quadric {
	var sum quadric
	for i := range sum {
		sum[i] = q[i] + o[i]
	}
	return sum
}

// error evaluates v^T Q v for the homogeneous point (x, y, z, 1).
func (q *quadric) error(p Vector3) float64 {
	x, y, z := float64(p.X), float64(p.Y), float64(p.Z)
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// optimalPosition solves the 3x3 system minimizing the quadric. The
// second return is false when the system is near-singular (flat or
// ruled neighborhoods), in which case the caller falls back to
// evaluating the endpoints and midpoint.
func (q *quadric) optimalPosition() (Vector3, bool) {
	a00, a01, a02 := q[0], q[1], q[2]
	a11, a12 := q[4], q[5]
	a22 := q[7]
	b0, b1, b2 := -q[3], -q[6], -q[8]

	det := a00*(a11*a22-a12*a12) - a01*(a01*a22-a12*a02) + a02*(a01*a12-a11*a02)
	if math.Abs(det) < 1e-12 {
		return Vector3{}, false
	}

	inv := 1 / det
	x := (b0*(a11*a22-a12*a12) - a01*(b1*a22-a12*b2) + a02*(b1*a12-a11*b2)) * inv
	y := (a00*(b1*a22-a12*b2) - b0*(a01*a22-a12*a02) + a02*(a01*b2-b1*a02)) * inv
	z := (a00*(a11*b2-b1*a12) - a01*(a01*b2-b1*a02) + b0*(a01*a12-a11*a02)) * inv

	p := Vector3{float32(x), float32(y), float32(z)}
	if !p.IsFinite() {
		return Vector3{}, false
	}
	return p, true
}

// candidate is one potential edge collapse in the priority queue.
// Version counters make stale entries detectable after a neighborhood
// changes; the heap never removes entries in place.
type candidate struct {
	cost     float64
	u, v     uint32
	uVersion uint32
	vVersion uint32
	target   Vector3
}

type candidateHeap []candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type face struct {
	v     [3]uint32
	alive bool
}

type decimator struct {
	opts      DecimateOptions
	positions []Vector3
	quadrics  []quadric
	versions  []uint32
	// vertexFaces holds face indices per vertex. Collapses append and
	// never remove; dead faces are skipped via the alive flag.
	vertexFaces [][]int32
	faces       []face
	liveFaces   int
	// boundaryVertex marks vertices on edges used by exactly one face
	// at input time. Collapsing into a boundary vertex keeps the
	// mark, so the rejection rule stays stable as edges merge. Only
	// consulted when PreserveBoundary is set.
	boundaryVertex []bool
	queue          candidateHeap
}

func newDecimator(m *Mesh, opts DecimateOptions) *decimator {
	d := &decimator{
		opts:        opts,
		positions:   make([]Vector3, len(m.Positions)),
		quadrics:    make([]quadric, len(m.Positions)),
		versions:    make([]uint32, len(m.Positions)),
		vertexFaces: make([][]int32, len(m.Positions)),
		faces:       make([]face, 0, m.TriangleCount()),
	}
	copy(d.positions, m.Positions)

	edgeUse := make(map[edgeKey]int)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		faceIndex := int32(len(d.faces))
		d.faces = append(d.faces, face{v: [3]uint32{i0, i1, i2}, alive: true})
		d.liveFaces++
		for _, vertex := range [3]uint32{i0, i1, i2} {
			d.vertexFaces[vertex] = append(d.vertexFaces[vertex], faceIndex)
		}
		edgeUse[makeEdgeKey(i0, i1)]++
		edgeUse[makeEdgeKey(i1, i2)]++
		edgeUse[makeEdgeKey(i0, i2)]++
	}

	d.boundaryVertex = make([]bool, len(m.Positions))
	for edge, uses := range edgeUse {
		if uses == 1 {
			d.boundaryVertex[edge.a] = true
			d.boundaryVertex[edge.b] = true
		}
	}

	// Accumulate area-weighted plane quadrics per vertex.
	for _, f := range d.faces {
		p0, p1, p2 := d.positions[f.v[0]], d.positions[f.v[1]], d.positions[f.v[2]]
		normal := p1.Sub(p0).Cross(p2.Sub(p0))
		area := float64(normal.Length()) / 2
		if area == 0 {
			continue
		}
		length := normal.Length()
		a := float64(normal.X / length)
		b := float64(normal.Y / length)
		c := float64(normal.Z / length)
		dPlane := -(a*float64(p0.X) + b*float64(p0.Y) + c*float64(p0.Z))
		for _, vertex := range f.v {
			d.quadrics[vertex].addPlane(a, b, c, dPlane, area)
		}
	}

	// Seed the queue with every edge.
	for edge := range edgeUse {
		d.pushCandidate(edge.a, edge.b)
	}
	heap.Init(&d.queue)
	return d
}

// pushCandidate computes the merged quadric's optimal target and cost
// for edge (u, v) and queues it with the endpoints' current versions.
func (d *decimator) pushCandidate(u, v uint32) {
	merged := d.quadrics[u].add(&d.quadrics[v])

	if d.opts.PreserveBoundary {
		uBoundary, vBoundary := d.boundaryVertex[u], d.boundaryVertex[v]
		if uBoundary && vBoundary {
			return
		}
		if uBoundary || vBoundary {
			// Interior endpoint merges into the boundary endpoint;
			// the boundary never moves.
			target := d.positions[u]
			if vBoundary {
				target = d.positions[v]
			}
			d.queue = append(d.queue, candidate{
				cost:     merged.error(target),
				u:        u,
				v:        v,
				uVersion: d.versions[u],
				vVersion: d.versions[v],
				target:   target,
			})
			return
		}
	}

	target, solved := merged.optimalPosition()
	if !solved {
		// Flat or singular neighborhood: evaluate the endpoints and
		// midpoint, keep the cheapest.
		pu, pv := d.positions[u], d.positions[v]
		mid := pu.Add(pv).Scale(0.5)
		target = pu
		best := merged.error(pu)
		if cost := merged.error(pv); cost < best {
			best, target = cost, pv
		}
		if cost := merged.error(mid); cost < best {
			target = mid
		}
	}

	d.queue = append(d.queue, candidate{
		cost:     merged.error(target),
		u:        u,
		v:        v,
		uVersion: d.versions[u],
		vVersion: d.versions[v],
		target:   target,
	})
}

// run pops candidates until the triangle budget is met or no valid
// collapse remains.
func (d *decimator) run(targetTriangles int) {
	for d.liveFaces > targetTriangles && d.queue.Len() > 0 {
		best := heap.Pop(&d.queue).(candidate)
		if best.uVersion != d.versions[best.u] || best.vVersion != d.versions[best.v] {
			continue
		}
		if !d.collapseAllowed(best) {
			continue
		}
		d.collapse(best)
	}
}

// collapseAllowed applies the rejection rules: boundary preservation
// and normal-flip prevention. Rejected candidates are simply dropped;
// a later neighborhood change re-queues the edge with fresh versions.
func (d *decimator) collapseAllowed(c candidate) bool {
	if d.opts.PreserveBoundary && d.boundaryVertex[c.u] && d.boundaryVertex[c.v] {
		return false
	}

	// A collapse removes the faces on the collapsed edge. Never let
	// that empty the mesh; small meshes stop above their floor.
	dying := 0
	for _, faceIndex := range d.vertexFaces[c.u] {
		f := &d.faces[faceIndex]
		if f.alive && faceContains(f, c.v) {
			dying++
		}
	}
	if d.liveFaces-dying < 1 {
		return false
	}

	for _, vertex := range [2]uint32{c.u, c.v} {
		for _, faceIndex := range d.vertexFaces[vertex] {
			f := &d.faces[faceIndex]
			if !f.alive || (faceContains(f, c.u) && faceContains(f, c.v)) {
				// Faces on the collapsed edge disappear; they cannot
				// flip.
				continue
			}
			if d.faceWouldFlip(f, c) {
				return false
			}
		}
	}
	return true
}

func faceContains(f *face, vertex uint32) bool {
	return f.v[0] == vertex || f.v[1] == vertex || f.v[2] == vertex
}

// faceWouldFlip compares the face normal before and after moving the
// collapsing endpoints to the target.
func (d *decimator) faceWouldFlip(f *face, c candidate) bool {
	var before, after [3]Vector3
	for i, vertex := range f.v {
		before[i] = d.positions[vertex]
		if vertex == c.u || vertex == c.v {
			after[i] = c.target
		} else {
			after[i] = d.positions[vertex]
		}
	}

	normalBefore := before[1].Sub(before[0]).Cross(before[2].Sub(before[0]))
	normalAfter := after[1].Sub(after[0]).Cross(after[2].Sub(after[0]))
	lengthBefore := float64(normalBefore.Length())
	lengthAfter := float64(normalAfter.Length())
	if lengthBefore == 0 {
		return false
	}
	if lengthAfter == 0 {
		// The collapse would flatten this face to zero area.
		return true
	}
	dot := float64(normalBefore.Dot(normalAfter)) / (lengthBefore * lengthAfter)
	return dot < d.opts.NormalFlipLimit
}

// collapse merges v into u at the target position and refreshes the
// affected neighborhood.
func (d *decimator) collapse(c candidate) {
	u, v := c.u, c.v
	d.positions[u] = c.target
	d.quadrics[u] = d.quadrics[u].add(&d.quadrics[v])

	for _, faceIndex := range d.vertexFaces[v] {
		f := &d.faces[faceIndex]
		if !f.alive {
			continue
		}
		if faceContains(f, u) {
			f.alive = false
			d.liveFaces--
			continue
		}
		for i := range f.v {
			if f.v[i] == v {
				f.v[i] = u
			}
		}
		d.vertexFaces[u] = append(d.vertexFaces[u], faceIndex)
	}
	d.vertexFaces[v] = nil

	if d.boundaryVertex[v] {
		d.boundaryVertex[u] = true
	}

	d.versions[u]++
	d.versions[v]++

	// Re-queue every surviving edge around the merged vertex.
	seen := make(map[uint32]bool)
	for _, faceIndex := range d.vertexFaces[u] {
		f := &d.faces[faceIndex]
		if !f.alive {
			continue
		}
		for _, vertex := range f.v {
			if vertex != u && !seen[vertex] {
				seen[vertex] = true
				d.pushCandidate(u, vertex)
				heap.Fix(&d.queue, d.queue.Len()-1)
			}
		}
	}
}

// extract compacts the surviving faces and vertices into a new mesh.
func (d *decimator) extract() *Mesh {
	remap := make(map[uint32]uint32, len(d.positions))
	out := &Mesh{}
	for _, f := range d.faces {
		if !f.alive {
			continue
		}
		for _, vertex := range f.v {
			mapped, ok := remap[vertex]
			if !ok {
				mapped = uint32(len(out.Positions))
				remap[vertex] = mapped
				out.Positions = append(out.Positions, d.positions[vertex])
			}
			out.Indices = append(out.Indices, mapped)
		}
	}
	return out
}
