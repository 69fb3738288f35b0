// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package diana implements the Diana forward-private SSE scheme (§4): a
// range-constrained PRF tree driving per-keyword update tokens, a client
// that tracks a monotonic counter per keyword, and a server that stores
// nothing but opaque update_token -> masked_index pairs.
package diana

import "github.com/cockroachdb/errors"

// Error kinds surfaced to callers (§7). NotFound is deliberately absent:
// a search miss is not an error, it yields an empty result set.
var (
	// ErrInvalidState is returned when an operation is attempted in a
	// lifecycle state that forbids it (e.g. searching an Uninitialised
	// server, or opening a second update session while one is open).
	ErrInvalidState = errors.New("diana: invalid state")

	// ErrOutOfRange is returned when a requested range or index falls
	// outside what the current counter or tree depth can express.
	ErrOutOfRange = errors.New("diana: out of range")

	// ErrIoFailure wraps a persistent-store error bubbled up from kv.
	ErrIoFailure = errors.New("diana: I/O failure")

	// ErrCorruptData is returned when stored data fails a size or format
	// check on read.
	ErrCorruptData = errors.New("diana: corrupt data")
)
