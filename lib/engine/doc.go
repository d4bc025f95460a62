// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine is the host boundary of the kernel. Every entry
// point takes flat buffers and plain parameters, and reports its
// outcome through an owned result struct instead of an error return:
// hosts embedding the kernel get a success flag, a bounded error
// message, and for successful calls a handle to engine-owned output
// memory that must be returned with the matching free function.
//
// Compression output lives in a job arena owned by the engine. The
// arena is reset between jobs once no results are outstanding, so
// steady-state operation allocates nothing per call; small outputs
// come from a fixed-block pool instead. Failures never panic across
// the boundary — unrecoverable conditions surface as a failed result
// with kerr.Fatal classification, and the error message is truncated
// to kerr.MaxMessageBytes.
package engine
