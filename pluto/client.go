// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pluto

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
	"github.com/luxfi/sse/tethys"
)

// Client answers a search by walking the deterministic core_key sequence
// derived from a keyword token, probing the cuckoo table for each full
// block in turn until one is missing, then fetching the residual (and
// any stash overflow) from the Tethys store keyed by that same sequence
// position (§4.7).
type Client struct {
	cuckooTable   database.Database
	residualStore *tethys.Store
}

// NewClient wires a cuckoo table and a residual Tethys store together.
func NewClient(cuckooTable database.Database, residualStore *tethys.Store) *Client {
	return &Client{cuckooTable: cuckooTable, residualStore: residualStore}
}

// Search returns every value stored under keywordToken.
func (c *Client) Search(keywordToken []byte) ([][]byte, error) {
	size, err := ReadTableSize(c.cuckooTable)
	if err != nil {
		return nil, errors.Wrap(err, "pluto: reading cuckoo table size")
	}

	var values [][]byte
	i := 0
	for {
		coreKey := deriveCoreKey(keywordToken, i)
		s0, s1 := candidatesForKey(coreKey, size)

		block, found, err := lookupEither(c.cuckooTable, s0, s1, coreKey)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		values = append(values, block.Values...)
		i++
	}

	coreKey := deriveCoreKey(keywordToken, i)
	residual, err := c.residualStore.GetList(coreKey[:16])
	if err != nil && !errors.Is(err, tethys.ErrNotFound) {
		return nil, err
	}
	values = append(values, residual...)

	return values, nil
}

func candidatesForKey(key CoreKey, size uint64) (s0, s1 uint64) {
	t := &CuckooTable{size: size}
	return t.candidates(key)
}

func lookupEither(db database.Database, s0, s1 uint64, key CoreKey) (Block, bool, error) {
	for _, idx := range []uint64{s0, s1} {
		block, found, err := ReadBlock(db, idx)
		if err != nil {
			return Block{}, false, err
		}
		if found && bytes.Equal(block.CoreKey[:], key[:]) {
			return block, true, nil
		}
	}
	return Block{}, false, nil
}
