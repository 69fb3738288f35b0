// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pluto

import (
	"encoding/binary"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// CuckooEps is the overallocation factor applied to the cuckoo table size
// relative to the number of full blocks it must hold (§4.7:
// size = ceil((1+eps/2) * total_full_blocks)).
const CuckooEps = 0.2

// ErrTableFull is returned when an insertion's eviction chain exceeds the
// configured retry budget, meaning the table is too full to place the
// block deterministically.
var ErrTableFull = errors.New("pluto: cuckoo table full")

// CuckooTable is a two-choice cuckoo hash table keyed by the first two
// 64-bit words of a CoreKey (§4.7). Each of the two words is itself a
// candidate slot index once reduced modulo the table size.
type CuckooTable struct {
	size    uint64
	slots   []Block
	present *bitset.BitSet
	maxKick int
}

// NewCuckooTable sizes a table for totalFullBlocks blocks.
func NewCuckooTable(totalFullBlocks int) *CuckooTable {
	size := uint64(math.Ceil((1 + CuckooEps/2) * float64(totalFullBlocks)))
	if size < 1 {
		size = 1
	}
	return &CuckooTable{
		size:    size,
		slots:   make([]Block, size),
		present: bitset.New(uint(size)),
		maxKick: 64,
	}
}

func (t *CuckooTable) candidates(key CoreKey) (s0, s1 uint64) {
	h0 := binary.LittleEndian.Uint64(key[0:8])
	h1 := binary.LittleEndian.Uint64(key[8:16])
	return h0 % t.size, h1 % t.size
}

// Insert places block, evicting existing occupants along a bounded kick
// chain if both of its candidate slots are already occupied. Returns
// ErrTableFull if no placement is found within the kick budget.
func (t *CuckooTable) Insert(block Block) error {
	for kicks := 0; kicks < t.maxKick; kicks++ {
		s0, s1 := t.candidates(block.CoreKey)
		if !t.present.Test(uint(s0)) {
			t.slots[s0] = block
			t.present.Set(uint(s0))
			return nil
		}
		if !t.present.Test(uint(s1)) {
			t.slots[s1] = block
			t.present.Set(uint(s1))
			return nil
		}
		// Both candidate slots occupied: evict s0's occupant and retry
		// placing it, keeping this block in s0 (standard cuckoo kick).
		block, t.slots[s0] = t.slots[s0], block
		t.present.Set(uint(s0))
	}
	return ErrTableFull
}

// Lookup probes both of key's candidate slots and returns the block found
// there, if any.
func (t *CuckooTable) Lookup(key CoreKey) (Block, bool) {
	s0, s1 := t.candidates(key)
	if t.present.Test(uint(s0)) && t.slots[s0].CoreKey == key {
		return t.slots[s0], true
	}
	if t.present.Test(uint(s1)) && t.slots[s1].CoreKey == key {
		return t.slots[s1], true
	}
	return Block{}, false
}

// Size returns the table's slot count.
func (t *CuckooTable) Size() uint64 { return t.size }

// slotAt returns the block occupying slot index, if any.
func (t *CuckooTable) slotAt(index uint64) (Block, bool) {
	if index >= t.size || !t.present.Test(uint(index)) {
		return Block{}, false
	}
	return t.slots[index], true
}

// Slots exposes every occupied slot, for serialization by a builder.
func (t *CuckooTable) Slots() []Block {
	occupied := make([]Block, 0, t.size)
	for i := uint(0); i < uint(t.size); i++ {
		if t.present.Test(i) {
			occupied = append(occupied, t.slots[i])
		}
	}
	return occupied
}
