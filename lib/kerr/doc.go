// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

// Package kerr defines the error taxonomy shared by all kernel
// packages. Every failure mode the kernel can report maps to exactly
// one sentinel declared here; callers classify failures with
// errors.Is and never by string matching.
//
// Two of the sentinels deserve special mention. ErrInvalidPointer
// indicates a caller contract violation (a stale or foreign
// allocation handle) rather than a bad-input condition — the current
// job is unrecoverable when it appears. Everything else describes
// malformed input or resource exhaustion and is reported through
// result values at the host boundary, never by panicking across it.
package kerr
