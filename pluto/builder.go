// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pluto

import (
	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
	"github.com/luxfi/sse/tethys"
	"github.com/luxfi/sse/xcrypto"
)

// KeywordList is one keyword's full token and values, as handed to a
// Builder.
type KeywordList struct {
	KeywordToken []byte
	Values       [][]byte
}

// Builder splits every keyword list into full blocks of BlockLength
// placed in a cuckoo table, plus a residual (the trailing short list)
// placed in a Tethys store keyed by the first 16 bytes of the core key at
// position numFullBlocks (§4.7): full blocks take positions
// 0..numFullBlocks-1 and the residual the next one, so the residual is
// at position 0 only for a keyword with no full block. A
// dummy, randomly-keyed full block is always inserted so that the cuckoo
// table's occupancy does not reveal whether any keyword has zero full
// blocks.
type Builder struct {
	totalFullBlocks int
	blocks          []Block
	residuals       []tethys.List
}

// NewBuilder prepares an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Insert stages one keyword's list for building.
func (b *Builder) Insert(list KeywordList) {
	n := len(list.Values)
	numFullBlocks := n / BlockLength

	for i := 0; i < numFullBlocks; i++ {
		coreKey := deriveCoreKey(list.KeywordToken, i)
		start := i * BlockLength
		b.blocks = append(b.blocks, Block{
			CoreKey: coreKey,
			Values:  list.Values[start : start+BlockLength],
		})
	}

	residualValues := list.Values[numFullBlocks*BlockLength:]
	if len(residualValues) > 0 || numFullBlocks == 0 {
		coreKey := deriveCoreKey(list.KeywordToken, numFullBlocks)
		b.residuals = append(b.residuals, tethys.List{
			Key:    coreKey[:16],
			Values: residualValues,
		})
	}

	b.totalFullBlocks += numFullBlocks
}

func deriveCoreKey(keywordToken []byte, blockIndex int) CoreKey {
	var idx [8]byte
	v := uint64(blockIndex)
	for i := 0; i < 8; i++ {
		idx[i] = byte(v)
		v >>= 8
	}
	return CoreKey(xcrypto.Hash(keywordToken, idx[:]))
}

// Build inserts a dummy full block under a random key (so an empty
// keyword set is indistinguishable from one with nothing but residuals),
// fills the cuckoo table, and builds the Tethys residual store.
func (b *Builder) Build(cuckooTable database.Database, residualTable, residualStash database.Database) error {
	dummyKey, err := xcrypto.RandomKey()
	if err != nil {
		return errors.Wrap(err, "pluto: generating dummy block key")
	}
	dummyValues := make([][]byte, BlockLength)
	for i := range dummyValues {
		dummyValue, err := xcrypto.RandomKey()
		if err != nil {
			return errors.Wrap(err, "pluto: generating dummy block value")
		}
		dummyValues[i] = dummyValue[:]
	}
	dummyCore := deriveCoreKey(dummyKey[:], 0)
	b.blocks = append(b.blocks, Block{CoreKey: dummyCore, Values: dummyValues})

	table := NewCuckooTable(len(b.blocks))
	for _, block := range b.blocks {
		if err := table.Insert(block); err != nil {
			return errors.Wrap(err, "pluto: inserting full block into cuckoo table")
		}
	}
	if err := writeCuckooTable(cuckooTable, table); err != nil {
		return err
	}

	residualBuilder := tethys.NewStoreBuilder(len(b.residuals), cuckooResidualPageCapacity, cuckooResidualEntrySize, nil)
	for _, list := range b.residuals {
		if err := residualBuilder.Insert(list); err != nil {
			return errors.Wrap(err, "pluto: staging residual list")
		}
	}
	return residualBuilder.Build(residualTable, residualStash)
}

const (
	cuckooResidualPageCapacity = BlockLength
	cuckooResidualEntrySize    = 64
)
