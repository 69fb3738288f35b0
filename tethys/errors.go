// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tethys implements the Tethys static encrypted store (§4.5, §4.6):
// a bipartite max-flow allocator that packs variable-length keyword lists
// into fixed-capacity, page-aligned buckets with minimal overflow, and a
// builder/reader pair that serializes the resulting layout to a table file
// plus a small stash file for whatever the allocator could not place.
package tethys

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidState is returned when an operation is attempted out of
	// sequence, e.g. inserting into a builder that has already built.
	ErrInvalidState = errors.New("tethys: invalid state")

	// ErrOutOfRange is returned when a requested page or index is outside
	// the table's bounds.
	ErrOutOfRange = errors.New("tethys: out of range")

	// ErrIoFailure wraps a persistent-store error encountered reading or
	// writing the table or stash file.
	ErrIoFailure = errors.New("tethys: I/O failure")

	// ErrCorruptData is returned when stored data fails a size or format
	// check on read.
	ErrCorruptData = errors.New("tethys: corrupt data")

	// ErrNotFound is returned when a key has no list in the store.
	ErrNotFound = errors.New("tethys: key not found")
)
