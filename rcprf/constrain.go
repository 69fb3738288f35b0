// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rcprf

import "github.com/luxfi/sse/xcrypto"

// SubtreeRoot is one element of a constrained cover: a subtree root key
// together with the number of PRG levels between it and its leaves. The
// subtree has 2^Depth leaves.
type SubtreeRoot struct {
	Key   xcrypto.Key
	Depth uint8
}

// LeafCount returns the number of leaves under this subtree.
func (s SubtreeRoot) LeafCount() uint64 {
	return uint64(1) << s.Depth
}

// Constrained is the minimal, left-to-right ordered sequence of subtree
// roots covering a contiguous leaf interval (§3 `ConstrainedRcPrf`).
type Constrained struct {
	Roots []SubtreeRoot
}

// LeafCount returns the total number of leaves covered.
func (c *Constrained) LeafCount() uint64 {
	var total uint64
	for _, r := range c.Roots {
		total += r.LeafCount()
	}
	return total
}

// Constrain returns the minimal cover of leaves [begin, end) as an ordered
// sequence of subtree roots (§4.1). The cover is built greedily: at each
// node, recurse into whichever half(s) of [begin, end) overlap it, and stop
// recursing as soon as a node's entire leaf range is covered.
func (t *Tree) Constrain(begin, end uint64) (*Constrained, error) {
	capacity := t.Capacity()
	if begin > end || end > capacity {
		return nil, ErrOutOfRange
	}
	c := &Constrained{}
	if begin == end {
		return c, nil
	}
	if err := cover(t.root, t.depth, begin, end, &c.Roots); err != nil {
		return nil, err
	}
	return c, nil
}

// cover recurses over a node keyed by K spanning leaves [0, 2^depth)
// (relative to K), adding to out the minimal dyadic decomposition of
// [lo, hi) within that range, left to right.
func cover(K xcrypto.Key, depth uint8, lo, hi uint64, out *[]SubtreeRoot) error {
	if lo >= hi {
		return nil
	}
	if lo == 0 && hi == (uint64(1)<<depth) {
		*out = append(*out, SubtreeRoot{Key: K, Depth: depth})
		return nil
	}

	half := uint64(1) << (depth - 1)
	left, right, err := children(K)
	if err != nil {
		return err
	}

	if lo < half {
		leftHi := hi
		if leftHi > half {
			leftHi = half
		}
		if err := cover(left, depth-1, lo, leftHi, out); err != nil {
			return err
		}
	}
	if hi > half {
		rightLo := uint64(0)
		if lo > half {
			rightLo = lo - half
		}
		if err := cover(right, depth-1, rightLo, hi-half, out); err != nil {
			return err
		}
	}
	return nil
}
