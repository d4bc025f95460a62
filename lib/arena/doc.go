// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package arena implements the kernel's memory foundation: a
// fixed-size linear region with free-block tracking, and a
// fixed-block pool layered on top of it for high-frequency small
// allocations.
//
// The arena hands out Ref handles rather than pointers. A Ref names a
// byte range inside the region together with the generation of the
// arena that issued it; Bytes validates both before returning a view.
// A stale or foreign Ref is reported as kerr.ErrInvalidPointer and
// never silently aliases another allocation. This is the index-based
// rendering of a classic free-list allocator: all bookkeeping lives
// in ordinary slices and maps, so there is no raw-pointer aliasing to
// get wrong, but the semantics — best-fit search, coalescing on free,
// O(1) bulk reset — are those of the C original.
//
// One arena serves one job at a time. Reset between jobs reclaims
// everything at once and invalidates every outstanding Ref.
package arena
