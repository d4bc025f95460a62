// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// Vertex-cache scoring constants (Forsyth's linear-speed
// optimization). The exact values are the published ones; the
// ordering is far more sensitive to their relative shape than to
// fine tuning.
const (
	cacheDecayPower   = 1.5
	lastTriangleScore = 0.75
	valenceBoostScale = 2.0
	valenceBoostPower = 0.5

	// DefaultCacheSize models a typical post-transform vertex cache.
	DefaultCacheSize = 32

	minCacheSize = 4
	maxCacheSize = 64
)

// OptimizeVertexCache reorders triangles for post-transform vertex
// cache locality using Forsyth's greedy score-driven traversal.
// cacheSize models the target cache (clamped to 4..64; zero selects
// DefaultCacheSize). Returns a new index buffer containing the same
// triangles; vertices are untouched.
func OptimizeVertexCache(indices []uint32, vertexCount, cacheSize int) ([]uint32, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("empty index buffer: %w", kerr.ErrEmptyInput)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3: %w", len(indices), kerr.ErrInvalidParameter)
	}
	if vertexCount <= 0 {
		return nil, fmt.Errorf("vertex count %d: %w", vertexCount, kerr.ErrInvalidParameter)
	}
	for i, index := range indices {
		if int(index) >= vertexCount {
			return nil, fmt.Errorf("index %d at position %d exceeds vertex count %d: %w",
				index, i, vertexCount, kerr.ErrInvalidParameter)
		}
	}
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheSize < minCacheSize {
		cacheSize = minCacheSize
	}
	if cacheSize > maxCacheSize {
		cacheSize = maxCacheSize
	}

	triangleCount := len(indices) / 3

	// Per-vertex state: remaining (not yet emitted) triangle lists
	// and cache positions (-1 = not cached).
	vertexTriangles := make([][]int32, vertexCount)
	cachePosition := make([]int32, vertexCount)
	vertexScore := make([]float64, vertexCount)
	for t := 0; t < triangleCount; t++ {
		for _, vertex := range indices[t*3 : t*3+3] {
			vertexTriangles[vertex] = append(vertexTriangles[vertex], int32(t))
		}
	}
	for v := range cachePosition {
		cachePosition[v] = -1
		vertexScore[v] = forsythScore(-1, len(vertexTriangles[v]), cacheSize)
	}

	// Triangle scores drive the greedy pick; a max-heap with position
	// tracking keeps updates cheap when vertex scores shift.
	scores := make([]float64, triangleCount)
	emitted := make([]bool, triangleCount)
	queue := &triangleHeap{
		order:    make([]int32, triangleCount),
		position: make([]int32, triangleCount),
		scores:   scores,
	}
	for t := 0; t < triangleCount; t++ {
		for _, vertex := range indices[t*3 : t*3+3] {
			scores[t] += vertexScore[vertex]
		}
		queue.order[t] = int32(t)
		queue.position[t] = int32(t)
	}
	heap.Init(queue)

	// LRU cache of vertex indices, most recent first.
	cache := make([]uint32, 0, cacheSize+3)
	output := make([]uint32, 0, len(indices))

	for len(output) < len(indices) {
		best := queue.popBest(emitted)
		if best < 0 {
			break
		}
		emitted[best] = true
		corners := indices[best*3 : best*3+3]
		output = append(output, corners[0], corners[1], corners[2])

		// Drop the emitted triangle from its vertices' remaining
		// lists.
		for _, vertex := range corners {
			remaining := vertexTriangles[vertex]
			for i, t := range remaining {
				if t == int32(best) {
					remaining[i] = remaining[len(remaining)-1]
					vertexTriangles[vertex] = remaining[:len(remaining)-1]
					break
				}
			}
		}

		// Move the triangle's vertices to the cache front. Vertices
		// in the old or new cache are the only ones whose position —
		// and therefore score — can change.
		dirty := append([]uint32(nil), cache...)
		dirty = append(dirty, corners[0], corners[1], corners[2])
		for _, vertex := range corners {
			for i, cached := range cache {
				if cached == vertex {
					cache = append(cache[:i], cache[i+1:]...)
					break
				}
			}
			cache = append([]uint32{vertex}, cache...)
		}
		if len(cache) > cacheSize {
			cache = cache[:cacheSize]
		}

		for _, vertex := range dirty {
			cachePosition[vertex] = -1
		}
		for position, vertex := range cache {
			cachePosition[vertex] = int32(position)
		}

		touched := make(map[int32]bool)
		for _, vertex := range dirty {
			vertexScore[vertex] = forsythScore(int(cachePosition[vertex]), len(vertexTriangles[vertex]), cacheSize)
			for _, t := range vertexTriangles[vertex] {
				touched[t] = true
			}
		}
		for t := range touched {
			if emitted[t] {
				continue
			}
			score := 0.0
			for _, vertex := range indices[t*3 : t*3+3] {
				score += vertexScore[vertex]
			}
			queue.update(t, score)
		}
	}
	return output, nil
}

// forsythScore values a vertex by cache position and remaining
// valence. Cached vertices decay with depth; the three most recent
// slots share a flat score so the traversal does not chain through
// one triangle strip forever. Vertices with few remaining triangles
// get a boost so isolated patches are finished rather than stranded.
func forsythScore(cachePos, activeTriangles, cacheSize int) float64 {
	if activeTriangles == 0 {
		return -1
	}

	score := 0.0
	switch {
	case cachePos < 0:
		// Not cached.
	case cachePos < 3:
		score = lastTriangleScore
	default:
		scaled := 1 - float64(cachePos-3)/float64(cacheSize-3)
		if scaled < 0 {
			scaled = 0
		}
		score = math.Pow(scaled, cacheDecayPower)
	}

	return score + valenceBoostScale*math.Pow(float64(activeTriangles), -valenceBoostPower)
}

// triangleHeap is a max-heap over triangle scores with reverse
// position tracking so individual entries can be rescored in place.
type triangleHeap struct {
	order    []int32
	position []int32
	scores   []float64
}

func (h *triangleHeap) Len() int { return len(h.order) }
func (h *triangleHeap) Less(i, j int) bool {
	return h.scores[h.order[i]] > h.scores[h.order[j]]
}
func (h *triangleHeap) Swap(i, j int) {
	h.order[i], h.order[j] = h.order[j], h.order[i]
	h.position[h.order[i]] = int32(i)
	h.position[h.order[j]] = int32(j)
}
func (h *triangleHeap) Push(x any) {
	t := x.(int32)
	h.position[t] = int32(len(h.order))
	h.order = append(h.order, t)
}
func (h *triangleHeap) Pop() any {
	last := len(h.order) - 1
	t := h.order[last]
	h.order = h.order[:last]
	return t
}

// popBest removes and returns the highest-scoring unemitted
// triangle, or -1 when none remain.
func (h *triangleHeap) popBest(emitted []bool) int32 {
	for h.Len() > 0 {
		t := heap.Pop(h).(int32)
		if !emitted[t] {
			return t
		}
	}
	return -1
}

// update rescores a triangle still in the heap.
func (h *triangleHeap) update(t int32, score float64) {
	h.scores[t] = score
	if int(h.position[t]) < len(h.order) && h.order[h.position[t]] == t {
		heap.Fix(h, int(h.position[t]))
	}
}
