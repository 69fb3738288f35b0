// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pluto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sse/kv"
	"github.com/luxfi/sse/tethys"
)

func TestPluto_FullBlockAndResidualRoundTrip(t *testing.T) {
	require := require.New(t)

	keywordToken := []byte("keyword-token")
	values := make([][]byte, BlockLength+42)
	for i := range values {
		values[i] = []byte(fmt.Sprintf("v%d", i))
	}

	builder := NewBuilder()
	builder.Insert(KeywordList{KeywordToken: keywordToken, Values: values})

	cuckooDB, err := kv.OpenInMemory()
	require.NoError(err)
	residualTable, err := kv.OpenInMemory()
	require.NoError(err)
	residualStash, err := kv.OpenInMemory()
	require.NoError(err)

	require.NoError(builder.Build(cuckooDB, residualTable, residualStash))

	residualStore, err := tethys.OpenStore(residualTable, residualStash, nil)
	require.NoError(err)

	client := NewClient(cuckooDB, residualStore)
	got, err := client.Search(keywordToken)
	require.NoError(err)
	require.ElementsMatch(values, got)
}

func TestPluto_ResidualOnlyKeyword(t *testing.T) {
	require := require.New(t)

	keywordToken := []byte("short-keyword")
	values := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	builder := NewBuilder()
	builder.Insert(KeywordList{KeywordToken: keywordToken, Values: values})

	cuckooDB, err := kv.OpenInMemory()
	require.NoError(err)
	residualTable, err := kv.OpenInMemory()
	require.NoError(err)
	residualStash, err := kv.OpenInMemory()
	require.NoError(err)

	require.NoError(builder.Build(cuckooDB, residualTable, residualStash))

	residualStore, err := tethys.OpenStore(residualTable, residualStash, nil)
	require.NoError(err)

	client := NewClient(cuckooDB, residualStore)
	got, err := client.Search(keywordToken)
	require.NoError(err)
	require.ElementsMatch(values, got)
}

func TestCuckooTable_InsertAndLookup(t *testing.T) {
	require := require.New(t)

	table := NewCuckooTable(4)
	block := Block{CoreKey: deriveCoreKey([]byte("kw"), 0), Values: [][]byte{[]byte("v")}}
	require.NoError(table.Insert(block))

	got, found := table.Lookup(block.CoreKey)
	require.True(found)
	require.Equal(block.CoreKey, got.CoreKey)

	_, found = table.Lookup(deriveCoreKey([]byte("other"), 0))
	require.False(found)
}
