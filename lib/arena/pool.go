// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"fmt"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// poolAlignment is the alignment of every pool block. Collapse
// records and codec scratch rows are laid out assuming it.
const poolAlignment = 16

// PoolStats describes pool occupancy.
type PoolStats struct {
	BlockSize       int
	BlocksAllocated int
	BlocksFree      int
}

// Pool is a fixed-size-block freelist carved out of an Arena. Every
// block is exactly BlockSize bytes and 16-byte aligned, and is on
// exactly one of the free or used sides at any time. Pools never grow
// implicitly: when the freelist empties, Alloc reports
// kerr.ErrPoolExhausted and the caller decides whether to Expand.
type Pool struct {
	arena     *Arena
	blockSize int

	free []Ref
	used map[int]Ref // keyed by block offset

	blocksAllocated int
	blocksFree      int
}

// NewPool pre-allocates initialBlocks blocks of blockSize bytes from
// the arena. A pool reserves one arena allocation per block so that
// Expand never has to move existing blocks.
func NewPool(a *Arena, blockSize, initialBlocks int) (*Pool, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("pool block size %d: %w", blockSize, kerr.ErrInvalidParameter)
	}
	if initialBlocks < 0 {
		return nil, fmt.Errorf("pool initial block count %d: %w", initialBlocks, kerr.ErrInvalidParameter)
	}
	pool := &Pool{
		arena:     a,
		blockSize: blockSize,
		used:      make(map[int]Ref),
	}
	if err := pool.Expand(initialBlocks); err != nil {
		return nil, err
	}
	return pool, nil
}

// BlockSize returns the fixed size of every block in the pool.
func (p *Pool) BlockSize() int { return p.blockSize }

// Alloc pops a block from the freelist. The returned handle is an
// ordinary arena Ref of exactly BlockSize bytes.
func (p *Pool) Alloc() (Ref, error) {
	if len(p.free) == 0 {
		return Ref{}, fmt.Errorf("pool of %d-byte blocks: %w", p.blockSize, kerr.ErrPoolExhausted)
	}
	ref := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.used[ref.offset] = ref
	p.blocksAllocated++
	p.blocksFree--
	return ref, nil
}

// Free returns a block to the freelist. The handle must be one this
// pool handed out and must currently be allocated; anything else is
// a fatal kerr.ErrInvalidPointer.
func (p *Pool) Free(ref Ref) error {
	owned, ok := p.used[ref.offset]
	if !ok || owned != ref {
		return fmt.Errorf("block at offset %d does not belong to this pool: %w",
			ref.offset, kerr.ErrInvalidPointer)
	}
	delete(p.used, ref.offset)
	p.free = append(p.free, ref)
	p.blocksAllocated--
	p.blocksFree++
	return nil
}

// Expand adds additionalBlocks fresh blocks to the freelist. This is
// the only way a pool grows; between Expand calls the sum of
// allocated and free blocks is constant.
func (p *Pool) Expand(additionalBlocks int) error {
	if additionalBlocks < 0 {
		return fmt.Errorf("pool expansion by %d blocks: %w", additionalBlocks, kerr.ErrInvalidParameter)
	}
	// All-or-nothing: stage the new blocks, and return them to the
	// arena if the expansion cannot complete. A partial expansion
	// would break the block-count conservation invariant.
	staged := make([]Ref, 0, additionalBlocks)
	for i := 0; i < additionalBlocks; i++ {
		ref, err := p.arena.AllocAligned(p.blockSize, poolAlignment)
		if err != nil {
			for _, r := range staged {
				// Frees of just-issued handles cannot fail.
				_ = p.arena.Free(r)
			}
			return fmt.Errorf("expanding pool to %d blocks: %w",
				p.blocksAllocated+p.blocksFree+additionalBlocks, err)
		}
		staged = append(staged, ref)
	}
	p.free = append(p.free, staged...)
	p.blocksFree += additionalBlocks
	return nil
}

// Bytes returns the byte view of a pool block, delegating handle
// validation to the arena.
func (p *Pool) Bytes(ref Ref) ([]byte, error) {
	return p.arena.Bytes(ref)
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		BlockSize:       p.blockSize,
		BlocksAllocated: p.blocksAllocated,
		BlocksFree:      p.blocksFree,
	}
}
