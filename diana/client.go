// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

import (
	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/kv"
	"github.com/luxfi/sse/rcprf"
	"github.com/luxfi/sse/xcrypto"
)

// Client is the Diana client (§4.4): it owns two independent keyed PRFs,
// rootPrf (deriving each keyword's private RC-PRF tree root) and
// kwTokenPrf (deriving each keyword's 16-byte index used only to key the
// local counter store), plus the persistent KeywordCounter. A Client never
// learns what the server stores; it only ever emits opaque update_tokens
// and masked indices.
type Client struct {
	rootPrf     xcrypto.Prf
	kwTokenPrf  xcrypto.Prf
	counters    *kv.CounterStore
	treeDepth   uint8
	indexSize   int
	session     *Session
}

// NewClient constructs a Diana client from two independent master keys and
// a persistent counter store. treeDepth bounds the number of elements any
// single keyword may accumulate to 2^treeDepth; indexSize is the width in
// bytes of the document indices being stored.
func NewClient(rootKey, kwTokenKey xcrypto.Key, counters *kv.CounterStore, treeDepth uint8, indexSize int) *Client {
	return &Client{
		rootPrf:    xcrypto.NewPrf(rootKey),
		kwTokenPrf: xcrypto.NewPrf(kwTokenKey),
		counters:   counters,
		treeDepth:  treeDepth,
		indexSize:  indexSize,
	}
}

// kwIndexOf derives keyword's unkeyed hash index (§4.3 get_keyword_index):
// the same 16 bytes are then fed into both of the client's independent
// keyed PRFs, so that a keyword's tree root and its local counter-store
// key are both bound to the same keyword without either PRF ever seeing
// the other's output.
func kwIndexOf(keyword []byte) []byte {
	digest := xcrypto.Hash(keyword)
	return digest[:16]
}

// GetKeywordIndex derives the 16-byte value identifying keyword in the
// local counter store (§4.3): a keyword never appears in the clear on
// disk, only this derived index does.
func (c *Client) GetKeywordIndex(keyword []byte) ([]byte, error) {
	return c.kwTokenPrf.Eval(kwIndexOf(keyword), 16)
}

func (c *Client) keywordTree(keyword []byte) (*rcprf.Tree, error) {
	root, err := c.rootPrf.DeriveKey(kwIndexOf(keyword))
	if err != nil {
		return nil, err
	}
	return rcprf.NewTree(root, c.treeDepth)
}

// GetMatchCount returns the current number of elements stored under
// keyword (§4.4).
func (c *Client) GetMatchCount(keyword []byte) (uint64, error) {
	kwIndex, err := c.GetKeywordIndex(keyword)
	if err != nil {
		return 0, err
	}
	return c.counters.Get(kwIndex)
}

// SearchRequest builds the constrained cover a server needs to answer a
// search for keyword (§4.4): constrain [0, c) where c is the keyword's
// current match count.
func (c *Client) SearchRequest(keyword []byte) (*SearchRequest, error) {
	count, err := c.GetMatchCount(keyword)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &SearchRequest{Count: 0}, nil
	}

	tree, err := c.keywordTree(keyword)
	if err != nil {
		return nil, err
	}
	constrained, err := tree.Constrain(0, count)
	if err != nil {
		return nil, errors.Wrap(err, "diana: building search request")
	}
	return &SearchRequest{Roots: constrained.Roots, Count: count}, nil
}

// InsertionRequest atomically reserves the next index for keyword and
// derives the UpdateRequest encoding (keyword, index, documentIndex) for
// the server to store (§4.4). The real document index, not the position
// within the keyword's list, is what is recovered on search.
func (c *Client) InsertionRequest(keyword []byte, documentIndex uint64) (*UpdateRequest, error) {
	kwIndex, err := c.GetKeywordIndex(keyword)
	if err != nil {
		return nil, err
	}
	position, err := c.counters.GetAndIncrement(kwIndex)
	if err != nil {
		return nil, err
	}
	return c.buildUpdateRequest(keyword, position, documentIndex)
}

// BulkInsertionRequest reserves len(documentIndices) consecutive positions
// for keyword in one atomic step and derives an UpdateRequest for each
// (§4.4 bulk_insertion_request). The batch is linearizable: no other
// insertion for this keyword can interleave with the reserved range.
func (c *Client) BulkInsertionRequest(keyword []byte, documentIndices []uint64) ([]*UpdateRequest, error) {
	if len(documentIndices) == 0 {
		return nil, nil
	}
	kwIndex, err := c.GetKeywordIndex(keyword)
	if err != nil {
		return nil, err
	}
	start, err := c.counters.GetAndAdd(kwIndex, uint64(len(documentIndices)))
	if err != nil {
		return nil, err
	}

	requests := make([]*UpdateRequest, len(documentIndices))
	for i, docIndex := range documentIndices {
		req, err := c.buildUpdateRequest(keyword, start+uint64(i), docIndex)
		if err != nil {
			return nil, err
		}
		requests[i] = req
	}
	return requests, nil
}

func (c *Client) buildUpdateRequest(keyword []byte, position, documentIndex uint64) (*UpdateRequest, error) {
	tree, err := c.keywordTree(keyword)
	if err != nil {
		return nil, err
	}
	leaf, err := tree.Eval(position)
	if err != nil {
		return nil, errors.Wrap(err, "diana: evaluating RC-PRF leaf")
	}
	updateToken, mask, err := deriveUpdateToken(leaf, c.indexSize)
	if err != nil {
		return nil, err
	}

	maskedIndex := make([]byte, c.indexSize)
	xorBytes(maskedIndex, mask, encodeIndex(documentIndex, c.indexSize))

	return &UpdateRequest{UpdateToken: updateToken, MaskedIndex: maskedIndex}, nil
}

// RemoveKeyword deletes the local counter for keyword, so that a future
// insertion restarts its RC-PRF tree at index 0 (§4.4 remove_keyword).
// Existing entries already stored at the server remain there, inert:
// their update_tokens derive from the old, now-forgotten, indices.
func (c *Client) RemoveKeyword(keyword []byte) error {
	kwIndex, err := c.GetKeywordIndex(keyword)
	if err != nil {
		return err
	}
	return c.counters.Remove(kwIndex)
}

// KeywordCount is an alias for GetMatchCount kept for parity with the
// reference client's naming (§4.4 keyword_count).
func (c *Client) KeywordCount(keyword []byte) (uint64, error) {
	return c.GetMatchCount(keyword)
}
