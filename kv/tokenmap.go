// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kv

import (
	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
)

// TokenStore is the server-side persistent TokenMap (§4.4): a map from a
// 16-byte update_token to a masked index of fixed width. Unlike
// CounterStore, no read-modify-write synchronization is required: each
// update_token is derived from a distinct leaf, and one is derived again
// only after Client.RemoveKeyword resets a keyword's counter, in which
// case Put overwrites the old entry (the later write wins). A NewBatch is
// exposed for bulk_insert.
type TokenStore struct {
	db database.Database
}

// NewTokenStore wraps db as a token store.
func NewTokenStore(db database.Database) *TokenStore {
	return &TokenStore{db: db}
}

// Get returns the masked index stored under updateToken.
func (t *TokenStore) Get(updateToken []byte) ([]byte, error) {
	v, err := t.db.Get(updateToken)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "kv: token get")
	}
	return v, nil
}

// Put stores maskedIndex under updateToken.
func (t *TokenStore) Put(updateToken, maskedIndex []byte) error {
	if err := t.db.Put(updateToken, maskedIndex); err != nil {
		return errors.Wrap(err, "kv: token put")
	}
	return nil
}

// Has reports whether updateToken is present.
func (t *TokenStore) Has(updateToken []byte) (bool, error) {
	ok, err := t.db.Has(updateToken)
	if err != nil {
		return false, errors.Wrap(err, "kv: token has")
	}
	return ok, nil
}

// Batch accumulates a set of token/index pairs for an atomic bulk_insert.
type Batch struct {
	batch database.Batch
}

// NewBatch starts a new write batch.
func (t *TokenStore) NewBatch() *Batch {
	return &Batch{batch: t.db.NewBatch()}
}

// Put stages a token/index pair.
func (b *Batch) Put(updateToken, maskedIndex []byte) error {
	if err := b.batch.Put(updateToken, maskedIndex); err != nil {
		return errors.Wrap(err, "kv: batch put")
	}
	return nil
}

// Commit atomically writes every staged pair.
func (b *Batch) Commit() error {
	if err := b.batch.Write(); err != nil {
		return errors.Wrap(err, "kv: batch commit")
	}
	return nil
}

// Size returns the number of pairs staged so far.
func (b *Batch) Size() int { return b.batch.Size() }
