// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sse/kv"
	"github.com/luxfi/sse/xcrypto"
)

func TestStore_SingleListRoundTrip(t *testing.T) {
	require := require.New(t)

	builder := NewStoreBuilder(1, 16, 32, nil)
	values := [][]byte{[]byte("v1"), []byte("v2"), []byte("v3")}
	require.NoError(builder.Insert(List{Key: []byte("kw"), Values: values}))

	table, err := kv.OpenInMemory()
	require.NoError(err)
	stash, err := kv.OpenInMemory()
	require.NoError(err)

	require.NoError(builder.Build(table, stash))

	store, err := OpenStore(table, stash, nil)
	require.NoError(err)

	got, err := store.GetList([]byte("kw"))
	require.NoError(err)
	require.ElementsMatch(values, got)
}

func TestStore_MissingKey(t *testing.T) {
	require := require.New(t)

	builder := NewStoreBuilder(1, 16, 32, nil)
	require.NoError(builder.Insert(List{Key: []byte("kw"), Values: [][]byte{[]byte("v1")}}))

	table, err := kv.OpenInMemory()
	require.NoError(err)
	stash, err := kv.OpenInMemory()
	require.NoError(err)
	require.NoError(builder.Build(table, stash))

	store, err := OpenStore(table, stash, nil)
	require.NoError(err)

	_, err = store.GetList([]byte("absent"))
	require.ErrorIs(err, ErrNotFound)
}

func TestStore_OverflowProducesStash(t *testing.T) {
	require := require.New(t)

	const pageCapacity = 450
	builder := NewStoreBuilder(7, pageCapacity, 32, nil)

	lists := make([]List, 7)
	for i := range lists {
		values := make([][]byte, 450)
		for j := range values {
			values[j] = []byte(fmt.Sprintf("kw%d-v%d", i, j))
		}
		lists[i] = List{Key: []byte(fmt.Sprintf("kw%d", i)), Values: values}
		require.NoError(builder.Insert(lists[i]))
	}

	table, err := kv.OpenInMemory()
	require.NoError(err)
	stash, err := kv.OpenInMemory()
	require.NoError(err)
	require.NoError(builder.Build(table, stash))

	store, err := OpenStore(table, stash, nil)
	require.NoError(err)

	for _, list := range lists {
		got, err := store.GetList(list.Key)
		require.NoError(err)
		require.ElementsMatch(list.Values, got)
	}

	// Seven full-page lists share one bucket pair, so some must spill:
	// a stashed list has a record under its key plus sequence number 0.
	stashed := 0
	for _, list := range lists {
		firstStashKey := append(append([]byte(nil), list.Key...), make([]byte, 8)...)
		has, err := stash.Has(firstStashKey)
		require.NoError(err)
		if has {
			stashed++
		}
	}
	require.Positive(stashed)
}

func TestEncodeSeparate_RoundTrip(t *testing.T) {
	require := require.New(t)

	enc := &EncodeSeparate{}
	enc.StartBlockEncoding(256)
	require.NoError(enc.Encode([]byte("k1"), []byte("v1")))
	require.NoError(enc.Encode([]byte("k2"), []byte("v2")))
	page, err := enc.FinishBlockEncoding()
	require.NoError(err)

	entries, err := DecodeSeparate(page)
	require.NoError(err)
	require.Len(entries, 2)
	require.Equal([]byte("k1"), entries[0][0])
	require.Equal([]byte("v1"), entries[0][1])
}

func TestEncryptEncoder_RoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := xcrypto.RandomKey()
	require.NoError(err)

	builder := NewStoreBuilder(1, 8, 32, &key)
	require.NoError(builder.Insert(List{Key: []byte("kw"), Values: [][]byte{[]byte("v1")}}))

	table, err := kv.OpenInMemory()
	require.NoError(err)
	stash, err := kv.OpenInMemory()
	require.NoError(err)
	require.NoError(builder.Build(table, stash))

	store, err := OpenStore(table, stash, &key)
	require.NoError(err)

	got, err := store.GetList([]byte("kw"))
	require.NoError(err)
	require.Equal([][]byte{[]byte("v1")}, got)
}
