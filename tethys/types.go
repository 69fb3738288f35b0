// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

// Epsilon is the default overallocation factor applied to the number of
// buckets relative to the number of lists (§4.5): L = 2*ceil((1+eps)*N/p).
const Epsilon = 0.1

// List is one keyword's worth of opaque values to be stored under key.
type List struct {
	Key    []byte
	Values [][]byte
}

// placement records, for one inserted list, which bucket(s) hold how many
// of its values after allocation.
type placement struct {
	key        []byte
	values     [][]byte
	bucket0    int
	bucket1    int
	splitAt    int // values[:splitAt] go to bucket0, values[splitAt:] go to bucket1
	stashCount int // trailing values that didn't fit either bucket
}

// StashEntry is one value the allocator could not fit into either of a
// list's two candidate buckets (§4.5 overflow pass).
type StashEntry struct {
	Key   []byte
	Value []byte
}
