// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// DefaultAlignment is the allocation alignment used when New is given
// a zero alignment. Codec scratch state and mesh records both want
// 16-byte alignment for SIMD-friendly layout.
const DefaultAlignment = 16

// Ref is a handle to an allocation inside an Arena. The zero Ref is
// invalid. A Ref survives exactly until the allocation is freed or
// the arena is reset; after that, every use reports
// kerr.ErrInvalidPointer.
type Ref struct {
	offset     int
	size       int
	generation uint64
}

// Size returns the allocation size in bytes.
func (r Ref) Size() int { return r.size }

// IsZero reports whether r is the zero (invalid) handle.
func (r Ref) IsZero() bool { return r.generation == 0 }

// freeBlock is one entry in the ordered free list.
type freeBlock struct {
	offset int
	size   int
}

// Stats describes allocator activity since creation.
type Stats struct {
	TotalSize          int
	UsedSize           int
	Allocations        uint64
	Deallocations      uint64
	FailedAllocations  uint64
	PeakUsage          int
	FreeBlocks         int
	LargestFreeBlock   int
	FragmentationRatio float64
}

// Arena is a fixed linear memory region with free-block tracking.
// Not safe for concurrent use: the multi-threaded compression path
// gives each worker its own arena instead of sharing one.
type Arena struct {
	region    []byte
	alignment int

	// freeList is kept sorted by offset with no two adjacent blocks
	// (adjacency is coalesced on free). Together with allocated it
	// tiles [0, len(region)) exactly.
	freeList  []freeBlock
	allocated map[int]int // offset -> size

	usedSize   int
	generation uint64

	allocations       uint64
	deallocations     uint64
	failedAllocations uint64
	peakUsage         int
}

// New creates an arena over a fresh contiguous region of totalSize
// bytes. alignment must be zero (meaning DefaultAlignment) or a
// power of two. Fails with kerr.ErrInvalidParameter on a bad
// alignment and kerr.ErrOutOfMemory on a non-positive size.
func New(totalSize, alignment int) (*Arena, error) {
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	if alignment < 0 || alignment&(alignment-1) != 0 {
		return nil, fmt.Errorf("arena alignment %d is not a power of two: %w", alignment, kerr.ErrInvalidParameter)
	}
	if totalSize <= 0 {
		return nil, fmt.Errorf("arena size %d: %w", totalSize, kerr.ErrOutOfMemory)
	}
	return &Arena{
		region:     make([]byte, totalSize),
		alignment:  alignment,
		freeList:   []freeBlock{{offset: 0, size: totalSize}},
		allocated:  make(map[int]int),
		generation: 1,
	}, nil
}

// TotalSize returns the size of the backing region in bytes.
func (a *Arena) TotalSize() int { return len(a.region) }

// UsedSize returns the number of bytes currently allocated.
func (a *Arena) UsedSize() int { return a.usedSize }

// Alloc reserves size bytes at the arena's default alignment.
func (a *Arena) Alloc(size int) (Ref, error) {
	return a.AllocAligned(size, a.alignment)
}

// AllocAligned reserves size bytes aligned to the given power-of-two
// boundary. The free list is searched best-fit: the smallest block
// that can hold the aligned request wins, which bounds fragmentation
// for the mixed large/small allocation pattern of codec jobs. Any
// padding needed to reach alignment stays on the free list, so the
// free/allocated tiling invariant holds regardless of alignment.
func (a *Arena) AllocAligned(size, alignment int) (Ref, error) {
	if size <= 0 {
		return Ref{}, fmt.Errorf("allocation size %d: %w", size, kerr.ErrInvalidParameter)
	}
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return Ref{}, fmt.Errorf("allocation alignment %d is not a power of two: %w", alignment, kerr.ErrInvalidParameter)
	}

	bestIndex := -1
	bestWaste := 0
	bestStart := 0
	for i, block := range a.freeList {
		start := alignUp(block.offset, alignment)
		padding := start - block.offset
		if block.size < padding+size {
			continue
		}
		// Best fit measured on the whole block consumed, padding
		// included, so a tightly aligned block beats a loose one.
		waste := block.size - (padding + size)
		if bestIndex == -1 || waste < bestWaste {
			bestIndex = i
			bestWaste = waste
			bestStart = start
		}
	}
	if bestIndex == -1 {
		a.failedAllocations++
		return Ref{}, fmt.Errorf("no free block for %d bytes (aligned %d, %d free): %w",
			size, alignment, a.freeSize(), kerr.ErrOutOfMemory)
	}

	block := a.freeList[bestIndex]
	padding := bestStart - block.offset
	tail := block.size - padding - size

	// Replace the chosen block with its remnants: the alignment
	// padding before the allocation and the tail after it.
	remnants := make([]freeBlock, 0, 2)
	if padding > 0 {
		remnants = append(remnants, freeBlock{offset: block.offset, size: padding})
	}
	if tail > 0 {
		remnants = append(remnants, freeBlock{offset: bestStart + size, size: tail})
	}
	a.freeList = append(a.freeList[:bestIndex], append(remnants, a.freeList[bestIndex+1:]...)...)

	a.allocated[bestStart] = size
	a.usedSize += size
	a.allocations++
	if a.usedSize > a.peakUsage {
		a.peakUsage = a.usedSize
	}

	return Ref{offset: bestStart, size: size, generation: a.generation}, nil
}

// Free returns an allocation to the free list, coalescing with the
// free blocks adjacent to it. The handle must come from this arena's
// current generation and still be live; anything else is a fatal
// kerr.ErrInvalidPointer.
func (a *Arena) Free(ref Ref) error {
	if err := a.validate(ref); err != nil {
		return err
	}
	delete(a.allocated, ref.offset)
	a.usedSize -= ref.size
	a.deallocations++
	a.insertFree(freeBlock{offset: ref.offset, size: ref.size})
	return nil
}

// Bytes returns the live byte view for an allocation. The view stays
// valid until the allocation is freed or the arena is reset.
func (a *Arena) Bytes(ref Ref) ([]byte, error) {
	if err := a.validate(ref); err != nil {
		return nil, err
	}
	return a.region[ref.offset : ref.offset+ref.size : ref.offset+ref.size], nil
}

// Reset discards all bookkeeping and restores a single free block
// spanning the whole region. O(1) in the number of allocations. Every
// outstanding Ref is invalidated by bumping the generation.
func (a *Arena) Reset() {
	a.freeList = a.freeList[:0]
	a.freeList = append(a.freeList, freeBlock{offset: 0, size: len(a.region)})
	clear(a.allocated)
	a.usedSize = 0
	a.generation++
}

// Stats returns a snapshot of allocator activity.
func (a *Arena) Stats() Stats {
	largest := 0
	for _, block := range a.freeList {
		if block.size > largest {
			largest = block.size
		}
	}
	fragmentation := 0.0
	if free := a.freeSize(); free > 0 {
		fragmentation = 1.0 - float64(largest)/float64(free)
	}
	return Stats{
		TotalSize:          len(a.region),
		UsedSize:           a.usedSize,
		Allocations:        a.allocations,
		Deallocations:      a.deallocations,
		FailedAllocations:  a.failedAllocations,
		PeakUsage:          a.peakUsage,
		FreeBlocks:         len(a.freeList),
		LargestFreeBlock:   largest,
		FragmentationRatio: fragmentation,
	}
}

// validate checks that ref names a live allocation of this arena's
// current generation.
func (a *Arena) validate(ref Ref) error {
	if ref.generation != a.generation {
		return fmt.Errorf("handle from generation %d, arena at %d: %w",
			ref.generation, a.generation, kerr.ErrInvalidPointer)
	}
	if ref.offset < 0 || ref.size <= 0 || ref.offset+ref.size > len(a.region) {
		return fmt.Errorf("handle [%d, %d) outside region of %d bytes: %w",
			ref.offset, ref.offset+ref.size, len(a.region), kerr.ErrInvalidPointer)
	}
	size, ok := a.allocated[ref.offset]
	if !ok || size != ref.size {
		return fmt.Errorf("handle [%d, %d) does not name a live allocation: %w",
			ref.offset, ref.offset+ref.size, kerr.ErrInvalidPointer)
	}
	return nil
}

// insertFree places a block into the sorted free list and coalesces
// it with its neighbors.
func (a *Arena) insertFree(block freeBlock) {
	// Binary search for the insertion point by offset.
	low, high := 0, len(a.freeList)
	for low < high {
		mid := (low + high) / 2
		if a.freeList[mid].offset < block.offset {
			low = mid + 1
		} else {
			high = mid
		}
	}

	a.freeList = append(a.freeList, freeBlock{})
	copy(a.freeList[low+1:], a.freeList[low:])
	a.freeList[low] = block

	// Coalesce with the following block.
	if low+1 < len(a.freeList) && block.offset+block.size == a.freeList[low+1].offset {
		a.freeList[low].size += a.freeList[low+1].size
		a.freeList = append(a.freeList[:low+1], a.freeList[low+2:]...)
	}
	// Coalesce with the preceding block.
	if low > 0 && a.freeList[low-1].offset+a.freeList[low-1].size == a.freeList[low].offset {
		a.freeList[low-1].size += a.freeList[low].size
		a.freeList = append(a.freeList[:low], a.freeList[low+1:]...)
	}
}

func (a *Arena) freeSize() int {
	total := 0
	for _, block := range a.freeList {
		total += block.size
	}
	return total
}

func alignUp(offset, alignment int) int {
	return (offset + alignment - 1) &^ (alignment - 1)
}
