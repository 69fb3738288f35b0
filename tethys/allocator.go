// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/luxfi/sse/xcrypto"
)

// Allocator assigns each inserted list to two candidate buckets (one per
// vertex partition) and, where page capacity forces it, splits the list
// across both buckets or spills the remainder to a stash (§4.5).
type Allocator struct {
	pageCapacity int
	numV0, numV1 int
	graph        *allocationGraph
	lists        []List
	edgeOf       []int // parallel to lists: index into graph.edges
}

// NewAllocator sizes the bucket space for numLists lists at the given
// page capacity, applying the overallocation factor eps (§4.5:
// L = 2*ceil((1+eps)*N/p)). eps <= 0 uses the Epsilon default.
func NewAllocator(numLists, pageCapacity int, eps float64) *Allocator {
	if eps <= 0 {
		eps = Epsilon
	}
	if pageCapacity < 1 {
		pageCapacity = 1
	}
	total := 2 * int(math.Ceil((1+eps)*float64(numLists)/float64(pageCapacity)))
	if total < 1 {
		total = 1
	}
	numV0 := (total + 1) / 2
	numV1 := total - numV0
	if numV1 < 1 {
		numV1 = 1
	}
	return &Allocator{
		pageCapacity: pageCapacity,
		numV0:        numV0,
		numV1:        numV1,
		graph:        newAllocationGraph(numV0, numV1, pageCapacity),
	}
}

// bucketHashes maps key to its two candidate bucket indices, one in each
// vertex partition (§4.5: hash(h0 mod L/2, L/2 + h1 mod (L-L/2)),
// generalized here to two independently sized partitions).
func (a *Allocator) bucketHashes(key []byte) (v0, v1 int) {
	digest := xcrypto.Hash(key)
	h0 := binary.LittleEndian.Uint64(digest[0:8])
	h1 := binary.LittleEndian.Uint64(digest[8:16])
	return int(h0 % uint64(a.numV0)), int(h1 % uint64(a.numV1))
}

// Insert registers a list for allocation. It must be called before
// Allocate.
func (a *Allocator) Insert(list List) {
	v0, v1 := a.bucketHashes(list.Key)
	edgeIdx := a.graph.addEdge(v0, v1, len(list.Values))
	a.lists = append(a.lists, list)
	a.edgeOf = append(a.edgeOf, edgeIdx)
}

// NumBuckets returns the bucket counts in each vertex partition.
func (a *Allocator) NumBuckets() (numV0, numV1 int) { return a.numV0, a.numV1 }

// Allocate runs the max-flow balancing pass followed by a deterministic
// overflow pass, and returns, for every inserted list, its final
// placement (§4.5). Stash entries produced by the overflow pass are
// collected and returned alongside.
func (a *Allocator) Allocate() ([]placement, []StashEntry) {
	a.graph.maxflow()

	placements := make([]placement, len(a.lists))
	for i, list := range a.lists {
		edge := a.graph.edges[a.edgeOf[i]]
		placements[i] = placement{
			key:     list.Key,
			values:  list.Values,
			bucket0: edge.v0,
			bucket1: edge.v1,
			splitAt: len(list.Values) - edge.flow,
		}
	}

	stash := a.overflowPass(placements)
	return placements, stash
}

// overflowPass clips any bucket still over page capacity after max-flow,
// in deterministic insertion order (incoming lists first, then outgoing),
// moving the excess to the stash (§4.5). "Incoming" here means the
// portion of a list assigned to its V1 bucket; "outgoing" means the
// portion assigned to its V0 bucket -- matching the reference allocator's
// edge-traversal order during the final clipping step.
func (a *Allocator) overflowPass(placements []placement) []StashEntry {
	var stash []StashEntry

	load0 := make([]int, a.numV0)
	load1 := make([]int, a.numV1)
	for i := range placements {
		p := &placements[i]
		load0[p.bucket0] += p.splitAt
		load1[p.bucket1] += len(p.values) - p.splitAt
	}

	order := make([]int, len(placements))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	for _, i := range order {
		p := &placements[i]
		v1Count := len(p.values) - p.splitAt
		if load1[p.bucket1] > a.pageCapacity {
			excess := load1[p.bucket1] - a.pageCapacity
			if excess > v1Count {
				excess = v1Count
			}
			load1[p.bucket1] -= excess
			p.stashCount += excess
		}
	}

	for _, i := range order {
		p := &placements[i]
		if load0[p.bucket0] > a.pageCapacity {
			excess := load0[p.bucket0] - a.pageCapacity
			if excess > p.splitAt {
				excess = p.splitAt
			}
			load0[p.bucket0] -= excess
			p.splitAt -= excess
			p.stashCount += excess
		}
	}

	for _, i := range order {
		p := &placements[i]
		for j := 0; j < p.stashCount; j++ {
			stash = append(stash, StashEntry{Key: p.key, Value: p.values[len(p.values)-p.stashCount+j]})
		}
	}

	return stash
}
