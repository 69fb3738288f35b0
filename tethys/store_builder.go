// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
	"github.com/luxfi/sse/xcrypto"
)

// StoreBuilder packs a batch of lists into a page-aligned table plus a
// stash (§4.5, §4.6). It is single-use: construct, Insert every list,
// then Build exactly once.
type StoreBuilder struct {
	pageBytes int
	entrySize int
	alloc     *Allocator
	built     bool
	encKey    *xcrypto.Key
}

// NewStoreBuilder prepares a builder for numLists lists, each bucket
// holding up to pageCapacity values of entrySize bytes apiece once
// encoded. If encKey is non-nil, every page is additionally encrypted
// with EncryptEncoder under that key.
func NewStoreBuilder(numLists, pageCapacity, entrySize int, encKey *xcrypto.Key) *StoreBuilder {
	return &StoreBuilder{
		pageBytes: pageCapacity * entrySize,
		entrySize: entrySize,
		alloc:     NewAllocator(numLists, pageCapacity, Epsilon),
		encKey:    encKey,
	}
}

// Insert stages list for allocation.
func (b *StoreBuilder) Insert(list List) error {
	if b.built {
		return ErrInvalidState
	}
	b.alloc.Insert(list)
	return nil
}

// Build runs allocation and writes the resulting table into table (each
// page keyed by 'b' followed by the 8-byte big-endian bucket index,
// numbered across both vertex partitions, V0 first then V1, plus one
// metadata record) and every stash entry into stash (keyed by the list's
// key followed by an 8-byte big-endian sequence number counted per key
// from 0).
func (b *StoreBuilder) Build(table, stash database.Database) error {
	if b.built {
		return ErrInvalidState
	}
	b.built = true

	placements, stashEntries := b.alloc.Allocate()
	numV0, numV1 := b.alloc.NumBuckets()

	bucket0 := make([][][2][]byte, numV0)
	bucket1 := make([][][2][]byte, numV1)
	for _, p := range placements {
		for i := 0; i < p.splitAt; i++ {
			bucket0[p.bucket0] = append(bucket0[p.bucket0], [2][]byte{p.key, p.values[i]})
		}
		for i := p.splitAt; i < len(p.values)-p.stashCount; i++ {
			bucket1[p.bucket1] = append(bucket1[p.bucket1], [2][]byte{p.key, p.values[i]})
		}
	}

	if err := writeBuckets(table, bucket0, 0, b.pageBytes, b.encKey); err != nil {
		return err
	}
	if err := writeBuckets(table, bucket1, numV0, b.pageBytes, b.encKey); err != nil {
		return err
	}
	if err := writeMeta(table, numV0, numV1, b.pageBytes); err != nil {
		return err
	}

	return writeStash(stash, stashEntries)
}

func writeBuckets(table database.Database, buckets [][][2][]byte, baseIndex, pageBytes int, encKey *xcrypto.Key) error {
	for i, entries := range buckets {
		pageIndex := uint64(baseIndex + i)

		var enc Encoder = &EncodeSeparate{}
		if encKey != nil {
			enc = NewEncryptEncoder(&EncodeSeparate{}, *encKey, pageIndex)
		}
		enc.StartBlockEncoding(pageBytes)
		for _, kv := range entries {
			if err := enc.Encode(kv[0], kv[1]); err != nil {
				return errors.Wrapf(err, "tethys: encoding bucket %d", pageIndex)
			}
		}
		page, err := enc.FinishBlockEncoding()
		if err != nil {
			return err
		}
		if err := table.Put(bucketKey(pageIndex), page); err != nil {
			return errors.Wrap(err, "tethys: writing table page")
		}
	}
	return nil
}

func writeMeta(table database.Database, numV0, numV1, pageBytes int) error {
	meta := make([]byte, 24)
	binary.LittleEndian.PutUint64(meta[0:8], uint64(numV0))
	binary.LittleEndian.PutUint64(meta[8:16], uint64(numV1))
	binary.LittleEndian.PutUint64(meta[16:24], uint64(pageBytes))
	return table.Put(metaKey(), meta)
}

func writeStash(stash database.Database, entries []StashEntry) error {
	seq := make(map[string]uint64)
	for _, e := range entries {
		i := seq[string(e.Key)]
		seq[string(e.Key)] = i + 1

		key := make([]byte, len(e.Key)+8)
		copy(key, e.Key)
		binary.BigEndian.PutUint64(key[len(e.Key):], i)
		if err := stash.Put(key, e.Value); err != nil {
			return errors.Wrap(err, "tethys: writing stash entry")
		}
	}
	return nil
}

func bucketKey(pageIndex uint64) []byte {
	key := make([]byte, 9)
	key[0] = 'b'
	binary.BigEndian.PutUint64(key[1:], pageIndex)
	return key
}

func metaKey() []byte { return []byte("m") }
