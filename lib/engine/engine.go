// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rmguney/pixie-juice-sub001/lib/arena"
	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

const (
	defaultArenaSize     = 16 << 20
	defaultScratchSize   = 1 << 20
	defaultScratchBlock  = 4096
	defaultScratchBlocks = 64
)

// Options configures a new Engine. The zero value selects a 16 MiB
// job arena, a 64-block 4 KiB scratch pool, and slog.Default().
type Options struct {
	// ArenaSize is the job arena capacity in bytes. Outputs larger
	// than what the arena can hold fail with ErrOutOfMemory.
	ArenaSize int

	// ScratchBlockSize and ScratchBlocks shape the fixed-block pool
	// used for small outputs.
	ScratchBlockSize int
	ScratchBlocks    int

	Logger *slog.Logger
}

// Engine dispatches kernel operations and owns the memory their
// results live in. Safe for concurrent use; jobs serialize on an
// internal mutex because they share the job arena.
type Engine struct {
	logger *slog.Logger

	mu          sync.Mutex
	jobs        *arena.Arena
	scratch     *arena.Pool
	outstanding int
}

// New builds an Engine with its job arena and scratch pool.
func New(opts Options) (*Engine, error) {
	if opts.ArenaSize == 0 {
		opts.ArenaSize = defaultArenaSize
	}
	if opts.ScratchBlockSize == 0 {
		opts.ScratchBlockSize = defaultScratchBlock
	}
	if opts.ScratchBlocks == 0 {
		opts.ScratchBlocks = defaultScratchBlocks
	}
	if opts.ArenaSize < 0 || opts.ScratchBlockSize < 0 || opts.ScratchBlocks < 0 {
		return nil, fmt.Errorf("negative engine sizing: %w", kerr.ErrInvalidParameter)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jobs, err := arena.New(opts.ArenaSize, arena.DefaultAlignment)
	if err != nil {
		return nil, fmt.Errorf("job arena: %w", err)
	}

	// The scratch pool lives in its own arena: pool blocks survive
	// job-arena resets. Sized for one Expand beyond the initial
	// blocks.
	scratchArenaSize := 2 * opts.ScratchBlockSize * opts.ScratchBlocks
	if scratchArenaSize < defaultScratchSize {
		scratchArenaSize = defaultScratchSize
	}
	scratchArena, err := arena.New(scratchArenaSize, arena.DefaultAlignment)
	if err != nil {
		return nil, fmt.Errorf("scratch arena: %w", err)
	}
	scratch, err := arena.NewPool(scratchArena, opts.ScratchBlockSize, opts.ScratchBlocks)
	if err != nil {
		return nil, fmt.Errorf("scratch pool: %w", err)
	}

	return &Engine{
		logger:  logger,
		jobs:    jobs,
		scratch: scratch,
	}, nil
}

// CompressionResult is the outcome of a byte-stream operation. On
// success the output bytes are engine-owned; read them with Data and
// return them with FreeCompressionResult. On failure there is no
// buffer and ErrorMessage carries a bounded description.
type CompressionResult struct {
	BytesWritten int
	Success      bool
	ErrorMessage string

	engine   *Engine
	ref      arena.Ref
	fromPool bool
	data     []byte
	freed    bool
}

// Data returns the output bytes, or nil after the result has been
// freed or for a failed result. The slice aliases engine memory:
// hosts needing the bytes past FreeCompressionResult must copy.
func (r *CompressionResult) Data() []byte {
	if !r.Success || r.freed {
		return nil
	}
	return r.data[:r.BytesWritten]
}

// FreeCompressionResult returns a result's buffer to the engine.
// Freeing a failed result is a no-op; freeing a successful result
// twice is a contract violation reported as ErrInvalidPointer.
func FreeCompressionResult(r *CompressionResult) error {
	if r == nil || !r.Success {
		return nil
	}
	if r.freed {
		return fmt.Errorf("compression result freed twice: %w", kerr.ErrInvalidPointer)
	}
	r.freed = true
	return r.engine.release(r.ref, r.fromPool)
}

// release returns one output allocation and retires its job slot.
func (e *Engine) release(ref arena.Ref, fromPool bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outstanding--
	if fromPool {
		return e.scratch.Free(ref)
	}
	return e.jobs.Free(ref)
}

// alloc reserves size output bytes, preferring a scratch-pool block
// for small outputs. Caller holds e.mu.
func (e *Engine) alloc(size int) (arena.Ref, []byte, bool, error) {
	if size < 1 {
		size = 1
	}
	if size <= e.scratch.BlockSize() {
		if ref, err := e.scratch.Alloc(); err == nil {
			data, err := e.scratch.Bytes(ref)
			if err != nil {
				return arena.Ref{}, nil, false, err
			}
			return ref, data[:size], true, nil
		} else if !errors.Is(err, kerr.ErrPoolExhausted) {
			return arena.Ref{}, nil, false, err
		}
		// Pool dry: fall through to the arena.
	}
	ref, err := e.jobs.Alloc(size)
	if err != nil {
		return arena.Ref{}, nil, false, err
	}
	data, err := e.jobs.Bytes(ref)
	if err != nil {
		return arena.Ref{}, nil, false, err
	}
	return ref, data, false, nil
}

// runInto executes a job whose worst-case output size is known up
// front: the producer writes directly into engine memory.
func (e *Engine) runInto(op string, outputBound int, produce func(dst []byte) (int, error)) *CompressionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outstanding == 0 {
		e.jobs.Reset()
	}

	ref, dst, fromPool, err := e.alloc(outputBound)
	if err != nil {
		return e.failure(op, err)
	}
	written, err := produce(dst)
	if err != nil {
		e.discard(ref, fromPool)
		return e.failure(op, err)
	}
	return e.success(op, ref, dst, fromPool, written)
}

// runBytes executes a job whose output size is only known after the
// fact: the producer allocates, then the engine copies the output
// into engine memory so the result's ownership story matches runInto.
func (e *Engine) runBytes(op string, produce func() ([]byte, error)) *CompressionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outstanding == 0 {
		e.jobs.Reset()
	}

	out, err := produce()
	if err != nil {
		return e.failure(op, err)
	}
	ref, dst, fromPool, err := e.alloc(len(out))
	if err != nil {
		return e.failure(op, err)
	}
	copy(dst, out)
	return e.success(op, ref, dst, fromPool, len(out))
}

// success finalizes a completed job. Caller holds e.mu.
func (e *Engine) success(op string, ref arena.Ref, data []byte, fromPool bool, written int) *CompressionResult {
	e.outstanding++
	e.logger.Debug("kernel job complete", "op", op, "bytes", written, "pool", fromPool)
	return &CompressionResult{
		BytesWritten: written,
		Success:      true,
		engine:       e,
		ref:          ref,
		fromPool:     fromPool,
		data:         data,
	}
}

// failure reports a failed job. Caller holds e.mu.
func (e *Engine) failure(op string, err error) *CompressionResult {
	if kerr.Fatal(err) {
		e.logger.Error("kernel job aborted", "op", op, "error", err)
	} else {
		e.logger.Warn("kernel job failed", "op", op, "error", err)
	}
	return &CompressionResult{
		ErrorMessage: kerr.BoundMessage(err.Error()),
	}
}

// discard returns an allocation made for a job that then failed.
// Caller holds e.mu.
func (e *Engine) discard(ref arena.Ref, fromPool bool) {
	if fromPool {
		_ = e.scratch.Free(ref)
		return
	}
	_ = e.jobs.Free(ref)
}
