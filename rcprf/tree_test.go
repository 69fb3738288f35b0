// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rcprf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sse/xcrypto"
)

func TestTree_EvalDeterministic(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 4)
	require.NoError(err)

	a, err := tree.Eval(5)
	require.NoError(err)
	b, err := tree.Eval(5)
	require.NoError(err)
	require.Equal(a, b)

	c, err := tree.Eval(6)
	require.NoError(err)
	require.NotEqual(a, c)
}

func TestTree_EvalOutOfRange(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 2)
	require.NoError(err)

	_, err = tree.Eval(4)
	require.ErrorIs(err, ErrOutOfRange)
}

func TestNewTree_InvalidDepth(t *testing.T) {
	_, err := NewTree(xcrypto.Key{}, 64)
	require.ErrorIs(t, err, ErrInvalidDepth)
}

func TestTree_ConstrainCoversExactRange(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 4)
	require.NoError(err)

	constrained, err := tree.Constrain(0, 11)
	require.NoError(err)
	require.Equal(uint64(11), constrained.LeafCount())

	leaves, err := constrained.ExpandAllLeaves()
	require.NoError(err)
	require.Len(leaves, 11)

	for i, leaf := range leaves {
		want, err := tree.Eval(uint64(i))
		require.NoError(err)
		require.Equal(want, leaf)
	}
}

func TestTree_ConstrainEmptyRange(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 4)
	require.NoError(err)

	constrained, err := tree.Constrain(3, 3)
	require.NoError(err)
	require.Equal(uint64(0), constrained.LeafCount())
	require.Empty(constrained.Roots)
}

func TestTree_ConstrainOutOfRange(t *testing.T) {
	tree, err := NewTree(xcrypto.Key{}, 4)
	require.NoError(t, err)

	_, err = tree.Constrain(0, 17)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestTree_ConstrainFullRangeIsSingleRoot(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 3)
	require.NoError(err)

	constrained, err := tree.Constrain(0, 8)
	require.NoError(err)
	require.Len(constrained.Roots, 1)
	require.Equal(uint8(3), constrained.Roots[0].Depth)
}

func TestConstrained_ExpandParallelMatchesSerial(t *testing.T) {
	require := require.New(t)

	tree, err := NewTree(xcrypto.Key{}, 6)
	require.NoError(err)

	constrained, err := tree.Constrain(2, 50)
	require.NoError(err)

	serial, err := constrained.ExpandAllLeaves()
	require.NoError(err)

	var mu sync.Mutex
	seen := make(map[LeafToken]bool)
	err = constrained.ExpandParallel(4, func(leaf LeafToken) {
		mu.Lock()
		defer mu.Unlock()
		seen[leaf] = true
	})
	require.NoError(err)
	require.Len(seen, len(serial))
	for _, leaf := range serial {
		require.True(seen[leaf])
	}
}
