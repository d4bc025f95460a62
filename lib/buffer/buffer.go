// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package buffer provides a reference-counted view over a backing
// allocation, so codec output can be sliced and handed to the host
// without copying. Every view created by New, Wrap, or Slice holds
// one reference; the backing store's release function runs exactly
// once, when the count reaches zero.
//
// The count is atomic so the multi-threaded strip-compression path
// can retain and release band views from worker goroutines. All
// other mutation of the underlying bytes remains single-owner.
package buffer

import (
	"fmt"
	"sync/atomic"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

// backing is the shared state behind one or more Buffer views.
type backing struct {
	data     []byte
	refCount atomic.Int64
	release  func([]byte)
}

// Buffer is a view over shared backing memory. The zero Buffer is
// invalid; obtain one from New, Wrap, or Slice.
type Buffer struct {
	store  *backing
	offset int
	size   int
}

// New allocates fresh backing storage of the given capacity and
// returns a view over all of it with a reference count of one.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("buffer capacity %d: %w", capacity, kerr.ErrInvalidParameter)
	}
	store := &backing{data: make([]byte, capacity)}
	store.refCount.Store(1)
	return &Buffer{store: store, size: capacity}, nil
}

// Wrap adopts externally owned memory. release, if non-nil, is
// invoked with the wrapped slice exactly once when the last reference
// is dropped — this is how arena-backed output is returned to its
// arena when the host is done with it.
func Wrap(data []byte, release func([]byte)) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("wrapping empty slice: %w", kerr.ErrEmptyInput)
	}
	store := &backing{data: data, release: release}
	store.refCount.Store(1)
	return &Buffer{store: store, size: len(data)}, nil
}

// Bytes returns the view's bytes. The slice aliases the shared
// backing store and stays valid until the last reference is released.
func (b *Buffer) Bytes() []byte {
	return b.store.data[b.offset : b.offset+b.size : b.offset+b.size]
}

// Size returns the length of this view in bytes.
func (b *Buffer) Size() int { return b.size }

// RefCount returns the current reference count of the backing store.
// Intended for tests and leak diagnostics.
func (b *Buffer) RefCount() int64 { return b.store.refCount.Load() }

// Slice returns a new view of size bytes starting at offset within
// this view, sharing the same backing store and incrementing its
// reference count. No bytes are copied. Fails if offset+size exceeds
// the parent view.
func (b *Buffer) Slice(offset, size int) (*Buffer, error) {
	if offset < 0 || size < 0 || offset+size > b.size {
		return nil, fmt.Errorf("slice [%d, %d) of %d-byte buffer: %w",
			offset, offset+size, b.size, kerr.ErrInvalidParameter)
	}
	b.Retain()
	return &Buffer{store: b.store, offset: b.offset + offset, size: size}, nil
}

// Retain adds a reference to the backing store.
func (b *Buffer) Retain() {
	b.store.refCount.Add(1)
}

// Release drops one reference. On the transition to zero the backing
// store's release function runs and the store is detached; further
// use of any view over it will panic rather than touch freed memory.
func (b *Buffer) Release() {
	remaining := b.store.refCount.Add(-1)
	if remaining > 0 {
		return
	}
	if remaining < 0 {
		panic("buffer: release of a buffer with no outstanding references")
	}
	if b.store.release != nil {
		b.store.release(b.store.data)
	}
	b.store.data = nil
}
