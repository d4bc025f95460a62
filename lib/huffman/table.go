// Copyright 2026 The Pixie Juice Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/rmguney/pixie-juice-sub001/lib/kerr"
)

const (
	// MaxSymbols is the byte-symbol alphabet size used by the
	// host-boundary encode/decode path.
	MaxSymbols = 256

	// MaxAlphabet is the largest alphabet BuildTable accepts. The
	// DEFLATE-style codec codes literals, lengths, and the
	// end-of-block marker in one 286-symbol alphabet.
	MaxAlphabet = 512

	// MaxCodeLength caps codeword length. Fifteen bits matches the
	// DEFLATE family and keeps decoder state in a few small arrays.
	MaxCodeLength = 15
)

// Entry is one symbol's assignment in a Table.
type Entry struct {
	Symbol    uint16
	Frequency uint32
	Length    uint8
	Code      uint32
}

// Table is a canonical Huffman code. Immutable after construction;
// safe for concurrent use by encoders and decoders.
type Table struct {
	// entries is indexed by symbol, sized to the alphabet. A zero
	// Length means the symbol has no code.
	entries []Entry

	maxLength uint8

	// Canonical decoding state: for each code length l, firstCode[l]
	// is the numerically smallest code of that length, count[l] the
	// number of codes of that length, and offset[l] the index into
	// ordered of the first symbol with that length. ordered holds
	// symbols sorted by (length, symbol) — canonical order.
	firstCode [MaxCodeLength + 1]uint32
	count     [MaxCodeLength + 1]uint16
	offset    [MaxCodeLength + 1]uint16
	ordered   []uint16
}

// Histogram counts byte frequencies in data. Convenience for the
// common build-from-payload path.
func Histogram(data []byte) []uint32 {
	frequencies := make([]uint32, MaxSymbols)
	for _, b := range data {
		frequencies[b]++
	}
	return frequencies
}

// BuildTable constructs a canonical minimum-redundancy code from a
// frequency histogram indexed by symbol. The alphabet size is
// len(frequencies). Symbols with zero frequency receive no code.
//
// Fails with kerr.ErrDegenerateTable if fewer than two symbols have
// nonzero frequency — a single-symbol alphabet cannot be assigned a
// zero-bit code, and callers must special-case such runs.
func BuildTable(frequencies []uint32) (*Table, error) {
	if len(frequencies) > MaxAlphabet {
		return nil, fmt.Errorf("histogram has %d symbols, max %d: %w",
			len(frequencies), MaxAlphabet, kerr.ErrInvalidParameter)
	}

	nonzero := 0
	for _, f := range frequencies {
		if f > 0 {
			nonzero++
		}
	}
	if nonzero < 2 {
		return nil, fmt.Errorf("%d symbols with nonzero frequency: %w", nonzero, kerr.ErrDegenerateTable)
	}

	// Work on a copy: overlong trees are handled by flattening the
	// histogram and retrying, which must not mutate the caller's data.
	working := make([]uint32, len(frequencies))
	copy(working, frequencies)

	var lengths []uint8
	for {
		lengths = codeLengths(working)
		overlong := false
		for _, l := range lengths {
			if l > MaxCodeLength {
				overlong = true
				break
			}
		}
		if !overlong {
			break
		}
		// Halving (floored, kept nonzero) compresses the frequency
		// range, which bounds tree depth while preserving the
		// nonzero symbol set. Converges to a near-balanced tree.
		for i, f := range working {
			if f > 0 {
				working[i] = (f >> 1) | 1
			}
		}
	}

	table := &Table{entries: make([]Entry, len(frequencies))}
	for symbol, l := range lengths {
		table.entries[symbol] = Entry{
			Symbol:    uint16(symbol),
			Frequency: frequencies[symbol],
			Length:    l,
		}
	}
	table.assignCanonical()
	return table, nil
}

// TableFromLengths reconstructs a table from per-symbol code lengths,
// as produced by CodeLengths on the encoding side. The lengths must
// describe a valid prefix code (Kraft inequality not exceeded) with
// at least two coded symbols.
func TableFromLengths(lengths []uint8) (*Table, error) {
	if len(lengths) > MaxAlphabet {
		return nil, fmt.Errorf("%d code lengths, max %d symbols: %w",
			len(lengths), MaxAlphabet, kerr.ErrInvalidParameter)
	}

	coded := 0
	var kraft uint64
	for symbol, l := range lengths {
		if l == 0 {
			continue
		}
		if l > MaxCodeLength {
			return nil, fmt.Errorf("symbol %d has code length %d, max %d: %w",
				symbol, l, MaxCodeLength, kerr.ErrInvalidParameter)
		}
		coded++
		kraft += 1 << (MaxCodeLength - l)
	}
	if coded < 2 {
		return nil, fmt.Errorf("%d coded symbols: %w", coded, kerr.ErrDegenerateTable)
	}
	if kraft > 1<<MaxCodeLength {
		return nil, fmt.Errorf("code lengths violate the Kraft inequality: %w", kerr.ErrInvalidParameter)
	}

	table := &Table{entries: make([]Entry, len(lengths))}
	for symbol, l := range lengths {
		table.entries[symbol] = Entry{Symbol: uint16(symbol), Length: l}
	}
	table.assignCanonical()
	return table, nil
}

// CodeLengths returns the per-symbol code lengths, indexed by symbol,
// zero for uncoded symbols. This is the table's entire serialized
// identity: TableFromLengths(t.CodeLengths()) yields codes identical
// to t's.
func (t *Table) CodeLengths() []uint8 {
	lengths := make([]uint8, len(t.entries))
	for symbol := range t.entries {
		lengths[symbol] = t.entries[symbol].Length
	}
	return lengths
}

// AlphabetSize returns the number of symbols the table was built
// over, coded or not.
func (t *Table) AlphabetSize() int { return len(t.entries) }

// MaxLength returns the longest assigned code length.
func (t *Table) MaxLength() uint8 { return t.maxLength }

// Entry returns the assignment for a symbol. A zero Length means the
// symbol has no code. Symbols outside the alphabet return the zero
// Entry.
func (t *Table) Entry(symbol uint16) Entry {
	if int(symbol) >= len(t.entries) {
		return Entry{}
	}
	return t.entries[symbol]
}

// assignCanonical fills in codes from the already-set lengths and
// builds the decoding arrays. Canonical order: ascending length,
// then ascending symbol; the running code value increments per
// symbol and left-shifts at each length increase.
func (t *Table) assignCanonical() {
	type lengthSymbol struct {
		length uint8
		symbol uint16
	}
	var order []lengthSymbol
	for symbol := range t.entries {
		if l := t.entries[symbol].Length; l > 0 {
			order = append(order, lengthSymbol{length: l, symbol: uint16(symbol)})
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].length != order[j].length {
			return order[i].length < order[j].length
		}
		return order[i].symbol < order[j].symbol
	})

	var code uint32
	var currentLength uint8
	t.ordered = make([]uint16, 0, len(order))
	for _, ls := range order {
		if ls.length > currentLength {
			code <<= ls.length - currentLength
			currentLength = ls.length
		}
		t.entries[ls.symbol].Code = code
		if t.count[ls.length] == 0 {
			t.firstCode[ls.length] = code
			t.offset[ls.length] = uint16(len(t.ordered))
		}
		t.count[ls.length]++
		t.ordered = append(t.ordered, ls.symbol)
		code++
	}
	t.maxLength = currentLength
}

// node is one tree node during the greedy merge. Children index into
// the node slice; -1 marks a leaf.
type node struct {
	weight      uint64
	symbol      uint16
	left, right int
}

// mergeHeap orders node indices by weight, breaking ties by index so
// table construction is deterministic for a given histogram.
type mergeHeap struct {
	nodes   []node
	indices []int
}

func (h *mergeHeap) Len() int { return len(h.indices) }
func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.indices[i], h.indices[j]
	if h.nodes[a].weight != h.nodes[b].weight {
		return h.nodes[a].weight < h.nodes[b].weight
	}
	return a < b
}
func (h *mergeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *mergeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *mergeHeap) Pop() any {
	last := h.indices[len(h.indices)-1]
	h.indices = h.indices[:len(h.indices)-1]
	return last
}

// codeLengths runs the greedy merge and returns the depth of every
// symbol's leaf, indexed by symbol. Requires at least two nonzero
// frequencies (checked by the caller).
func codeLengths(frequencies []uint32) []uint8 {
	nodes := make([]node, 0, 2*len(frequencies))
	for symbol, f := range frequencies {
		if f > 0 {
			nodes = append(nodes, node{weight: uint64(f), symbol: uint16(symbol), left: -1, right: -1})
		}
	}

	h := &mergeHeap{nodes: nodes, indices: make([]int, len(nodes))}
	for i := range h.indices {
		h.indices[i] = i
	}
	heap.Init(h)

	for h.Len() > 1 {
		left := heap.Pop(h).(int)
		right := heap.Pop(h).(int)
		h.nodes = append(h.nodes, node{
			weight: h.nodes[left].weight + h.nodes[right].weight,
			left:   left,
			right:  right,
		})
		heap.Push(h, len(h.nodes)-1)
	}
	nodes = h.nodes

	// Children are always created before their parent, so walking
	// indices from high to low visits every parent before its
	// children; the root (highest index) starts at depth zero.
	depth := make([]int, len(nodes))
	lengths := make([]uint8, len(frequencies))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.left >= 0 {
			depth[n.left] = depth[i] + 1
			depth[n.right] = depth[i] + 1
		} else {
			lengths[n.symbol] = uint8(depth[i])
		}
	}
	return lengths
}
