// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package mesh implements the triangle-mesh simplification engine:
// quadric-error-metric edge-collapse decimation, spatial-hash vertex
// welding, topology validation, and Forsyth-style vertex-cache
// index reordering.
//
// Meshes are indexed triangle soups: flat position arrays plus a
// uint32 index buffer, three indices per triangle. All operations
// treat their input as immutable and return a new mesh, because
// inputs arrive from untrusted callers and a half-mutated mesh after
// a failed operation is worse than no result.
//
// The geometry here deliberately carries its own minimal Vector3
// rather than a general vector-math dependency: the kernel needs a
// handful of float32 operations (dot, cross, length), and every one
// of them sits in a validated hot loop where the types should say
// exactly what they are.
package mesh
