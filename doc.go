// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sse is the root of a forward-private searchable symmetric
// encryption library built around two complementary schemes: Diana, a
// dynamic scheme keyed off a range-constrained PRF tree (package rcprf)
// with client and server halves in package diana; and Tethys, a static,
// page-aligned encrypted store built from a bipartite max-flow bucket
// allocator (package tethys), with its cuckoo-hashed hot-path variant
// Pluto (package pluto) layered on top.
//
// xcrypto holds the shared cryptographic primitives (keyed PRF/PRG, hash,
// page cipher); kv adapts a pebble-backed key-value store to the
// persistent maps each scheme needs.
package sse
