// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kv adapts github.com/cockroachdb/pebble to the
// crypto/database.Database contract and layers the two persistent stores
// the scheme needs on top of it: a client-side keyword counter map
// (§4.4 KeywordCounter) and a server-side update-token map (§4.4 TokenMap).
package kv

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/luxfi/sse/crypto/database"
)

// ErrNotFound is returned by Get when a key is absent, mirroring
// pebble.ErrNotFound without leaking the pebble type into callers.
var ErrNotFound = errors.New("kv: key not found")

// PebbleDB wraps a *pebble.DB to satisfy database.Database.
type PebbleDB struct {
	db *pebble.DB
}

var _ database.Database = (*PebbleDB)(nil)

// Open opens (creating if absent) a pebble database at dir.
func Open(dir string) (*PebbleDB, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "kv: opening pebble database at %q", dir)
	}
	return &PebbleDB{db: db}, nil
}

// OpenInMemory opens an in-memory pebble database, useful for tests and for
// ephemeral server state that need not survive a process restart.
func OpenInMemory() (*PebbleDB, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfsMemFS()})
	if err != nil {
		return nil, errors.Wrap(err, "kv: opening in-memory pebble database")
	}
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) Has(key []byte) (bool, error) {
	v, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "kv: has")
	}
	_ = v
	return true, closer.Close()
}

func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	v, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "kv: get")
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, closer.Close()
}

func (p *PebbleDB) Put(key, value []byte) error {
	if err := p.db.Set(key, value, pebble.Sync); err != nil {
		return errors.Wrap(err, "kv: put")
	}
	return nil
}

func (p *PebbleDB) Delete(key []byte) error {
	if err := p.db.Delete(key, pebble.Sync); err != nil {
		return errors.Wrap(err, "kv: delete")
	}
	return nil
}

func (p *PebbleDB) NewBatch() database.Batch {
	return &pebbleBatch{batch: p.db.NewBatch(), db: p.db}
}

func (p *PebbleDB) Close() error {
	if err := p.db.Close(); err != nil {
		return errors.Wrap(err, "kv: close")
	}
	return nil
}

type pebbleBatch struct {
	batch *pebble.Batch
	db    *pebble.DB
	n     int
}

var _ database.Batch = (*pebbleBatch)(nil)

func (b *pebbleBatch) Put(key, value []byte) error {
	b.n++
	return b.batch.Set(key, value, nil)
}

func (b *pebbleBatch) Delete(key []byte) error {
	b.n++
	return b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Size() int { return b.n }

func (b *pebbleBatch) Write() error {
	return b.batch.Commit(pebble.Sync)
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
	b.n = 0
}

func (b *pebbleBatch) Replay(w database.Writer) error {
	r := b.batch.Reader()
	for {
		kind, key, value, ok, err := r.Next()
		if err != nil {
			return errors.Wrap(err, "kv: replaying batch")
		}
		if !ok {
			return nil
		}
		switch kind {
		case pebble.InternalKeyKindSet:
			if err := w.Put(key, value); err != nil {
				return err
			}
		case pebble.InternalKeyKindDelete:
			if err := w.Delete(key); err != nil {
				return err
			}
		}
	}
}
