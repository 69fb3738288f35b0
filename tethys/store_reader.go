// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
	"github.com/luxfi/sse/kv"
	"github.com/luxfi/sse/xcrypto"
)

// Store reads back a table built by StoreBuilder (§4.6). A lookup fetches
// both of a key's candidate buckets, decodes each, filters to entries
// matching the key, and appends any matching stash entries.
type Store struct {
	table     database.Database
	stash     database.Database
	numV0     int
	numV1     int
	pageBytes int
	encKey    *xcrypto.Key
}

// OpenStore loads table metadata and wraps table/stash for lookups. If
// encKey is non-nil, pages are decrypted with it before decoding.
func OpenStore(table, stash database.Database, encKey *xcrypto.Key) (*Store, error) {
	meta, err := table.Get(metaKey())
	if err != nil {
		return nil, errors.Wrap(err, "tethys: reading table metadata")
	}
	if len(meta) != 24 {
		return nil, ErrCorruptData
	}
	return &Store{
		table:     table,
		stash:     stash,
		numV0:     int(binary.LittleEndian.Uint64(meta[0:8])),
		numV1:     int(binary.LittleEndian.Uint64(meta[8:16])),
		pageBytes: int(binary.LittleEndian.Uint64(meta[16:24])),
		encKey:    encKey,
	}, nil
}

func (s *Store) bucketHashes(key []byte) (v0, v1 int) {
	digest := xcrypto.Hash(key)
	h0 := binary.LittleEndian.Uint64(digest[0:8])
	h1 := binary.LittleEndian.Uint64(digest[8:16])
	return int(h0 % uint64(s.numV0)), int(h1 % uint64(s.numV1))
}

// GetList returns every value stored under key, across both of its
// candidate buckets and the stash.
func (s *Store) GetList(key []byte) ([][]byte, error) {
	v0, v1 := s.bucketHashes(key)

	var values [][]byte
	for _, pageIndex := range []uint64{uint64(v0), uint64(s.numV0 + v1)} {
		page, err := s.fetchPage(pageIndex)
		if err != nil {
			return nil, err
		}
		entries, err := DecodeSeparate(page)
		if err != nil {
			return nil, err
		}
		for _, kv := range entries {
			if bytes.Equal(kv[0], key) {
				values = append(values, kv[1])
			}
		}
	}

	stashValues, err := s.fetchStash(key)
	if err != nil {
		return nil, err
	}
	values = append(values, stashValues...)

	if len(values) == 0 {
		return nil, ErrNotFound
	}
	return values, nil
}

func (s *Store) fetchPage(pageIndex uint64) ([]byte, error) {
	page, err := s.table.Get(bucketKey(pageIndex))
	if err != nil {
		return nil, errors.Wrapf(err, "tethys: fetching page %d", pageIndex)
	}
	if s.encKey != nil {
		buf := make([]byte, len(page))
		copy(buf, page)
		if err := DecryptPage(*s.encKey, pageIndex, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	return page, nil
}

// fetchStash looks up key's stash entries one at a time, probing key
// followed by sequence numbers 0, 1, 2, ... and stopping at the first
// absent one. The stash is expected to be small (§4.5: it only ever holds
// the overflow the allocator's max-flow pass could not place), so these
// point lookups need no secondary index.
func (s *Store) fetchStash(key []byte) ([][]byte, error) {
	var values [][]byte
	for i := uint64(0); ; i++ {
		lookupKey := make([]byte, len(key)+8)
		copy(lookupKey, key)
		binary.BigEndian.PutUint64(lookupKey[len(key):], i)

		value, err := s.stash.Get(lookupKey)
		if errors.Is(err, kv.ErrNotFound) {
			return values, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "tethys: scanning stash")
		}
		values = append(values, value)
	}
}
