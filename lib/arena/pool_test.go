// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"errors"
	"testing"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

func newTestPool(t *testing.T, blockSize, initialBlocks int) *Pool {
	t.Helper()
	a, err := New(1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	pool, err := NewPool(a, blockSize, initialBlocks)
	if err != nil {
		t.Fatal(err)
	}
	return pool
}

func TestPoolAllocFree(t *testing.T) {
	pool := newTestPool(t, 64, 4)

	refs := make([]Ref, 4)
	for i := range refs {
		ref, err := pool.Alloc()
		if err != nil {
			t.Fatalf("Alloc #%d failed: %v", i, err)
		}
		if ref.Size() != 64 {
			t.Errorf("block size = %d, want 64", ref.Size())
		}
		if ref.offset%16 != 0 {
			t.Errorf("block at offset %d is not 16-byte aligned", ref.offset)
		}
		refs[i] = ref
	}

	if _, err := pool.Alloc(); !errors.Is(err, kerr.ErrPoolExhausted) {
		t.Fatalf("Alloc on empty pool = %v, want ErrPoolExhausted", err)
	}

	for _, ref := range refs {
		if err := pool.Free(ref); err != nil {
			t.Fatalf("Free failed: %v", err)
		}
	}

	stats := pool.Stats()
	if stats.BlocksAllocated != 0 || stats.BlocksFree != 4 {
		t.Errorf("stats after freeing all = %+v, want 0 allocated / 4 free", stats)
	}
}

func TestPoolBlockConservation(t *testing.T) {
	pool := newTestPool(t, 128, 8)

	total := func() int {
		stats := pool.Stats()
		return stats.BlocksAllocated + stats.BlocksFree
	}

	before := total()
	var held []Ref
	for i := 0; i < 5; i++ {
		ref, err := pool.Alloc()
		if err != nil {
			t.Fatal(err)
		}
		held = append(held, ref)
		if total() != before {
			t.Fatalf("block total changed to %d during alloc, want %d", total(), before)
		}
	}
	for _, ref := range held {
		if err := pool.Free(ref); err != nil {
			t.Fatal(err)
		}
		if total() != before {
			t.Fatalf("block total changed to %d during free, want %d", total(), before)
		}
	}

	if err := pool.Expand(4); err != nil {
		t.Fatal(err)
	}
	if total() != before+4 {
		t.Errorf("block total after Expand(4) = %d, want %d", total(), before+4)
	}
}

func TestPoolRejectsForeignBlock(t *testing.T) {
	pool := newTestPool(t, 64, 2)
	other := newTestPool(t, 64, 2)

	foreign, err := other.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Free(foreign); !errors.Is(err, kerr.ErrInvalidPointer) {
		t.Errorf("Free of foreign block = %v, want ErrInvalidPointer", err)
	}

	t.Run("double free", func(t *testing.T) {
		ref, err := pool.Alloc()
		if err != nil {
			t.Fatal(err)
		}
		if err := pool.Free(ref); err != nil {
			t.Fatal(err)
		}
		if err := pool.Free(ref); !errors.Is(err, kerr.ErrInvalidPointer) {
			t.Errorf("double Free = %v, want ErrInvalidPointer", err)
		}
	})
}

func TestPoolExpandFailsWhenArenaFull(t *testing.T) {
	a, err := New(1024, 0)
	if err != nil {
		t.Fatal(err)
	}
	pool, err := NewPool(a, 256, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Expand(8); !errors.Is(err, kerr.ErrOutOfMemory) {
		t.Errorf("Expand past arena capacity = %v, want ErrOutOfMemory", err)
	}

	// A failed expansion must not leave the pool partially grown.
	stats := pool.Stats()
	if stats.BlocksAllocated+stats.BlocksFree != 3 {
		t.Errorf("block total after failed Expand = %d, want 3", stats.BlocksAllocated+stats.BlocksFree)
	}
}
