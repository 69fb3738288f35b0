// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rcprf

import (
	"sync"

	"github.com/luxfi/sse/xcrypto"
)

// ExpandAllLeaves expands a Constrained cover into its leaves, in strictly
// increasing leaf-index order (§4.1, §8 round-trip property).
func (c *Constrained) ExpandAllLeaves() ([]LeafToken, error) {
	out := make([]LeafToken, 0, c.LeafCount())
	for _, root := range c.Roots {
		if err := expandSubtree(root.Key, root.Depth, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expandSubtree(K xcrypto.Key, depth uint8, out *[]LeafToken) error {
	if depth == 0 {
		*out = append(*out, K)
		return nil
	}
	left, right, err := children(K)
	if err != nil {
		return err
	}
	if err := expandSubtree(left, depth-1, out); err != nil {
		return err
	}
	return expandSubtree(right, depth-1, out)
}

// ExpandParallel distributes the subtree roots of a Constrained cover over
// workerCount worker goroutines, each expanding its assigned subtrees
// independently and calling onLeaf for every resulting leaf (§5: "the
// constrained subtree roots are distributed across workers... each subtree
// expansion is fully independent"). onLeaf may be called concurrently from
// multiple goroutines and must be safe for that; result ordering across the
// whole call is not guaranteed, matching the Diana server's
// search_parallel contract.
func (c *Constrained) ExpandParallel(workerCount int, onLeaf func(LeafToken)) error {
	if workerCount < 1 {
		workerCount = 1
	}
	if len(c.Roots) == 0 {
		return nil
	}

	jobs := make(chan SubtreeRoot)
	errCh := make(chan error, workerCount)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for root := range jobs {
				var leaves []LeafToken
				if err := expandSubtree(root.Key, root.Depth, &leaves); err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				for _, leaf := range leaves {
					onLeaf(leaf)
				}
			}
		}()
	}

	for _, root := range c.Roots {
		jobs <- root
	}
	close(jobs)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
