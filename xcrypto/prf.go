// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xcrypto

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"
)

// Prf is a keyed pseudorandom function producing N-byte outputs for
// arbitrary-length labels (§6 External Interfaces: `Prf<N>`). The Diana
// client owns two independent Prf instances: one to derive per-keyword
// RC-PRF roots, one to derive the per-keyword index that keys the
// client's local counter store. No output of the second is sent to the
// server.
type Prf struct {
	key Key
}

// NewPrf keys a Prf instance.
func NewPrf(key Key) Prf {
	return Prf{key: key}
}

// Eval evaluates the PRF on label, returning n pseudorandom bytes.
func (p Prf) Eval(label []byte, n int) ([]byte, error) {
	h, err := blake3.NewKeyed(p.key[:])
	if err != nil {
		return nil, errors.Wrap(err, "xcrypto: keying PRF")
	}
	if _, err := h.Write(label); err != nil {
		return nil, errors.Wrap(err, "xcrypto: writing PRF label")
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(h.Digest(), out); err != nil {
		return nil, errors.Wrap(err, "xcrypto: reading PRF output")
	}
	return out, nil
}

// DeriveKey evaluates the PRF and packs the output into a Key. It is used
// by the Diana client to turn a keyword index into the root key of that
// keyword's RC-PRF tree (§4.3).
func (p Prf) DeriveKey(label []byte) (Key, error) {
	b, err := p.Eval(label, KeySize)
	if err != nil {
		return Key{}, err
	}
	return NewKey(b)
}
