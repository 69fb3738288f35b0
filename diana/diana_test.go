// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sse/kv"
	"github.com/luxfi/sse/utils"
	"github.com/luxfi/sse/xcrypto"
)

func requireSameMultiset(t *testing.T, want, got []uint64) {
	t.Helper()
	wantBag, gotBag := utils.NewBag[uint64](), utils.NewBag[uint64]()
	for _, v := range want {
		wantBag.Add(v)
	}
	for _, v := range got {
		gotBag.Add(v)
	}
	require.True(t, wantBag.Equals(gotBag))
}

func newTestClientServer(t *testing.T) (*Client, *Server) {
	t.Helper()
	require := require.New(t)

	counterDB, err := kv.OpenInMemory()
	require.NoError(err)
	tokenDB, err := kv.OpenInMemory()
	require.NoError(err)

	rootKey, err := xcrypto.RandomKey()
	require.NoError(err)
	kwKey, err := xcrypto.RandomKey()
	require.NoError(err)

	client := NewClient(rootKey, kwKey, kv.NewCounterStore(counterDB), DefaultTreeDepth, IndexSize)
	server := NewServer(kv.NewTokenStore(tokenDB), IndexSize, nil, nil)

	require.NoError(server.Setup())
	require.NoError(server.Serve())

	return client, server
}

func TestDiana_EmptySearch(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	req, err := client.SearchRequest([]byte("absent"))
	require.NoError(err)
	require.Equal(uint64(0), req.Count)

	results, err := server.Search(req)
	require.NoError(err)
	require.Empty(results)
}

func TestDiana_SingleInsertAndSearch(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	req, err := client.InsertionRequest([]byte("apple"), 42)
	require.NoError(err)
	require.NoError(server.Insert(req))

	searchReq, err := client.SearchRequest([]byte("apple"))
	require.NoError(err)
	require.Equal(uint64(1), searchReq.Count)

	results, err := server.Search(searchReq)
	require.NoError(err)
	require.Equal([]uint64{42}, results)
}

func TestDiana_ForwardPrivateUpdateSequence(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	docs := []uint64{1, 2, 3, 4, 5}
	for _, doc := range docs {
		req, err := client.InsertionRequest([]byte("keyword"), doc)
		require.NoError(err)
		require.NoError(server.Insert(req))
	}

	searchReq, err := client.SearchRequest([]byte("keyword"))
	require.NoError(err)
	require.Equal(uint64(len(docs)), searchReq.Count)

	results, err := server.Search(searchReq)
	require.NoError(err)
	require.ElementsMatch(docs, results)
}

func TestDiana_MultiKeywordIsolation(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	reqA, err := client.InsertionRequest([]byte("alpha"), 1)
	require.NoError(err)
	require.NoError(server.Insert(reqA))

	reqB, err := client.InsertionRequest([]byte("beta"), 2)
	require.NoError(err)
	require.NoError(server.Insert(reqB))

	searchAlpha, err := client.SearchRequest([]byte("alpha"))
	require.NoError(err)
	resultsAlpha, err := server.Search(searchAlpha)
	require.NoError(err)
	require.Equal([]uint64{1}, resultsAlpha)

	searchBeta, err := client.SearchRequest([]byte("beta"))
	require.NoError(err)
	resultsBeta, err := server.Search(searchBeta)
	require.NoError(err)
	require.Equal([]uint64{2}, resultsBeta)
}

func TestDiana_BulkInsertionRequestAndSearchParallel(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	docs := []uint64{10, 20, 30, 40}
	reqs, err := client.BulkInsertionRequest([]byte("bulk"), docs)
	require.NoError(err)
	require.NoError(server.BulkInsert(reqs))

	searchReq, err := client.SearchRequest([]byte("bulk"))
	require.NoError(err)

	results, err := server.SearchParallel(searchReq, 3)
	require.NoError(err)
	requireSameMultiset(t, docs, results)
}

func TestDiana_RemoveKeywordResetsCounter(t *testing.T) {
	require := require.New(t)
	client, _ := newTestClientServer(t)

	_, err := client.InsertionRequest([]byte("kw"), 1)
	require.NoError(err)
	count, err := client.GetMatchCount([]byte("kw"))
	require.NoError(err)
	require.Equal(uint64(1), count)

	require.NoError(client.RemoveKeyword([]byte("kw")))

	count, err = client.GetMatchCount([]byte("kw"))
	require.NoError(err)
	require.Equal(uint64(0), count)
}

func TestDiana_UpdateSessionNotNestable(t *testing.T) {
	require := require.New(t)
	client, _ := newTestClientServer(t)

	session, err := client.StartUpdateSession()
	require.NoError(err)

	_, err = client.StartUpdateSession()
	require.ErrorIs(err, ErrInvalidState)

	_, err = session.EndUpdateSession()
	require.NoError(err)

	_, err = client.StartUpdateSession()
	require.NoError(err)
}

func TestDiana_UpdateSessionBatchesInsertions(t *testing.T) {
	require := require.New(t)
	client, server := newTestClientServer(t)

	session, err := client.StartUpdateSession()
	require.NoError(err)
	require.NoError(session.Insert([]byte("kw"), 100))
	require.NoError(session.Insert([]byte("kw"), 200))
	require.NoError(session.Insert([]byte("other"), 300))

	updates, err := session.EndUpdateSession()
	require.NoError(err)
	require.Len(updates, 2)

	for _, u := range updates {
		require.NoError(server.BulkInsert(u.Requests))
	}

	searchReq, err := client.SearchRequest([]byte("kw"))
	require.NoError(err)
	results, err := server.Search(searchReq)
	require.NoError(err)
	require.ElementsMatch([]uint64{100, 200}, results)
}

func TestServer_RejectsOperationsBeforeServing(t *testing.T) {
	require := require.New(t)

	tokenDB, err := kv.OpenInMemory()
	require.NoError(err)
	server := NewServer(kv.NewTokenStore(tokenDB), IndexSize, nil, nil)

	_, err = server.Search(&SearchRequest{})
	require.ErrorIs(err, ErrInvalidState)

	require.NoError(server.Setup())
	require.ErrorIs(server.Setup(), ErrInvalidState)
}
