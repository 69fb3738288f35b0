// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pluto implements the Pluto scheme (§4.7): a cuckoo-hashed hot
// path for full-length keyword blocks, with each keyword's short residual
// list stored in a Tethys store. A full block the cuckoo table cannot
// place makes the build fail with ErrTableFull; it is not moved to the
// Tethys store.
package pluto

// BlockLength is the fixed block size p used to split a keyword's list
// into full blocks plus a residual (§4.7).
const BlockLength = 256

// CoreKey identifies one full block: Hash(keyword_token || block_index).
// Its first two little-endian 64-bit words (bytes 0-7 and 8-15) give the
// cuckoo table's two candidate slots.
type CoreKey [32]byte

// Block is one full-length group of values belonging to a keyword.
type Block struct {
	CoreKey CoreKey
	Values  [][]byte
}
