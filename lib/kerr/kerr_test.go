// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package kerr

import (
	"fmt"
	"strings"
	"testing"
)

func TestBoundMessage(t *testing.T) {
	short := "output buffer too small"
	if got := BoundMessage(short); got != short {
		t.Errorf("BoundMessage(%q) = %q", short, got)
	}
	long := strings.Repeat("x", 4*MaxMessageBytes)
	if got := BoundMessage(long); len(got) != MaxMessageBytes {
		t.Errorf("bounded message is %d bytes, want %d", len(got), MaxMessageBytes)
	}
}

func TestFatalClassification(t *testing.T) {
	if !Fatal(fmt.Errorf("stale ref: %w", ErrInvalidPointer)) {
		t.Error("wrapped ErrInvalidPointer not classified fatal")
	}
	for _, err := range []error{ErrOutOfMemory, ErrOutputBufferTooSmall, ErrInvalidCode, ErrPoolExhausted} {
		if Fatal(err) {
			t.Errorf("%v classified fatal", err)
		}
	}
}
