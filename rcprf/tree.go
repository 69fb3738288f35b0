// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rcprf implements the range-constrained pseudorandom function tree
// (§4.1) that drives forward-private updates and searches in Diana: a
// deterministic binary tree keyed by a 32-byte master key, with a
// length-doubling PRG deriving each node's two children, where a
// contiguous leaf interval can be "constrained" into a minimal set of
// subtree roots and later expanded back into individual leaf tokens.
package rcprf

import (
	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/xcrypto"
)

// MaxDepth is the largest depth a tree or subtree may have; depths must fit
// in the shift amounts used throughout this package (§3: `1 ≤ d ≤ 63`).
const MaxDepth = 63

var (
	// ErrInvalidDepth is returned when a depth is 64 or larger.
	ErrInvalidDepth = errors.New("rcprf: invalid depth (>= 64)")
	// ErrOutOfRange is returned when a leaf index or range falls outside
	// the tree's capacity.
	ErrOutOfRange = errors.New("rcprf: index out of range")
)

// LeafToken is the 32-byte value at a tree leaf.
type LeafToken = xcrypto.Key

// Tree is an RC-PRF tree: a root key plus a depth. It exclusively owns its
// root key; Constrain transfers ownership of each subtree root it returns.
type Tree struct {
	root  xcrypto.Key
	depth uint8
}

// NewTree constructs a tree of the given depth, rooted at root. Depth 0
// means the root is the single leaf.
func NewTree(root xcrypto.Key, depth uint8) (*Tree, error) {
	if depth >= 64 {
		return nil, ErrInvalidDepth
	}
	return &Tree{root: root, depth: depth}, nil
}

// Depth returns the tree's depth.
func (t *Tree) Depth() uint8 { return t.depth }

// Capacity returns the number of leaves, 2^depth.
func (t *Tree) Capacity() uint64 {
	return uint64(1) << t.depth
}

// Eval walks `depth` PRG steps from root, following the bits of leafIndex
// most-significant-bit first, and returns the resulting leaf token.
func (t *Tree) Eval(leafIndex uint64) (LeafToken, error) {
	return eval(t.root, t.depth, leafIndex)
}

func eval(root xcrypto.Key, depth uint8, leafIndex uint64) (LeafToken, error) {
	if depth >= 64 {
		return LeafToken{}, ErrInvalidDepth
	}
	if depth < 64 && leafIndex >= (uint64(1)<<depth) {
		return LeafToken{}, ErrOutOfRange
	}

	cur := root
	for i := uint8(0); i < depth; i++ {
		bitPos := depth - 1 - i
		bit := (leafIndex >> bitPos) & 1

		expanded, err := xcrypto.Expand(cur)
		if err != nil {
			return LeafToken{}, err
		}
		if bit == 0 {
			copy(cur[:], expanded[:xcrypto.KeySize])
		} else {
			copy(cur[:], expanded[xcrypto.KeySize:])
		}
	}
	return cur, nil
}

// children derives the left and right children of a node keyed by K.
func children(K xcrypto.Key) (left, right xcrypto.Key, err error) {
	expanded, err := xcrypto.Expand(K)
	if err != nil {
		return left, right, err
	}
	copy(left[:], expanded[:xcrypto.KeySize])
	copy(right[:], expanded[xcrypto.KeySize:])
	return left, right, nil
}
