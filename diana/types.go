// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

import (
	"github.com/luxfi/sse/rcprf"
)

// UpdateTokenSize is the width of an update_token (§4.2).
const UpdateTokenSize = 16

// DefaultTreeDepth bounds the number of elements a single keyword may ever
// accumulate, 2^DefaultTreeDepth (§4.3: fixed per-keyword tree depth,
// derived fresh from root_prf, not shared across keywords).
const DefaultTreeDepth = 48

// UpdateType names the two kinds of update. UpdateRequest carries no
// update type: the masked value is the document index alone, and every
// request the Client builds is an insertion.
type UpdateType uint8

const (
	Insertion UpdateType = iota
	Deletion
)

// SearchRequest is the minimal, left-to-right ordered RC-PRF cover the
// client sends a server to search for a keyword (§4.4): the server never
// learns the keyword itself, only this constrained tree.
type SearchRequest struct {
	Roots []rcprf.SubtreeRoot
	Count uint64
}

// UpdateRequest is what the client sends to insert one element
// (§4.2, §4.4): an opaque 16-byte token keying the server's TokenMap, and
// the real index XORed with the token's companion mask.
type UpdateRequest struct {
	UpdateToken [UpdateTokenSize]byte
	MaskedIndex []byte
}

// IndexSize is the width in bytes of the document indices this scheme
// stores (the spec leaves this to the deployment; 8 bytes covers a
// uint64 document identifier without truncation).
const IndexSize = 8
