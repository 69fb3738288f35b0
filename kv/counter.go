// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kv

import (
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
)

// CounterStore is the client-side persistent KeywordCounter (§4.4): a map
// from a 16-byte keyword index to a monotonic count, supporting an atomic
// get-and-increment. Pebble has no native read-modify-write primitive, so
// the increment is serialized behind an in-process mutex; this is
// sufficient because a Diana client is single-owner per keyword index (§4.8
// update sessions are explicitly non-concurrent with each other).
type CounterStore struct {
	mu sync.Mutex
	db database.Database
}

// NewCounterStore wraps db as a counter store.
func NewCounterStore(db database.Database) *CounterStore {
	return &CounterStore{db: db}
}

// Get returns the current count for kwIndex, or 0 if absent.
func (c *CounterStore) Get(kwIndex []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(kwIndex)
}

func (c *CounterStore) getLocked(kwIndex []byte) (uint64, error) {
	v, err := c.db.Get(kwIndex)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "kv: counter get")
	}
	if len(v) != 8 {
		return 0, errors.New("kv: corrupt counter value")
	}
	return binary.LittleEndian.Uint64(v), nil
}

// GetAndIncrement atomically reads the current count for kwIndex and stores
// count+1, returning the count that was read (the value to use as the new
// element's index, §4.4 insertion_request).
func (c *CounterStore) GetAndIncrement(kwIndex []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.getLocked(kwIndex)
	if err != nil {
		return 0, err
	}
	if err := c.putLocked(kwIndex, cur+1); err != nil {
		return 0, err
	}
	return cur, nil
}

// GetAndAdd atomically reads the current count for kwIndex and advances it
// by n, returning the count that was read (§4.4 bulk_insertion_request: the
// first of n consecutive indices assigned to a batch).
func (c *CounterStore) GetAndAdd(kwIndex []byte, n uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.getLocked(kwIndex)
	if err != nil {
		return 0, err
	}
	if err := c.putLocked(kwIndex, cur+n); err != nil {
		return 0, err
	}
	return cur, nil
}

// Set overwrites the count for kwIndex.
func (c *CounterStore) Set(kwIndex []byte, count uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.putLocked(kwIndex, count)
}

func (c *CounterStore) putLocked(kwIndex []byte, count uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], count)
	if err := c.db.Put(kwIndex, buf[:]); err != nil {
		return errors.Wrap(err, "kv: counter put")
	}
	return nil
}

// Remove deletes kwIndex's counter entirely (§4.4 remove_keyword).
func (c *CounterStore) Remove(kwIndex []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.db.Delete(kwIndex); err != nil {
		return errors.Wrap(err, "kv: counter remove")
	}
	return nil
}
