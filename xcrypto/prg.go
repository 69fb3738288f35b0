// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xcrypto

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"
)

// PrgOutputSize is the width of one PRG expansion step: 32 bytes for the
// left child, 32 bytes for the right child (§4.1, length-doubling PRG).
const PrgOutputSize = 64

// Expand is the length-doubling PRG: given a 32-byte key it returns 64
// pseudorandom bytes, the left and right children of the RC-PRF tree node
// keyed by K.
func Expand(key Key) ([PrgOutputSize]byte, error) {
	var out [PrgOutputSize]byte
	b, err := Derive(key, 0, PrgOutputSize)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Derive reads `length` pseudorandom bytes starting at `offset` in the
// keyed output stream of `key`. It backs both the RC-PRF's length-doubling
// PRG and the update-token/mask derivation of §4.2, which reads a single
// (16+index_size)-byte slice out of one keyed expansion.
func Derive(key Key, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, errors.New("xcrypto: negative offset or length")
	}
	h, err := blake3.NewKeyed(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "xcrypto: keying PRG")
	}
	d := h.Digest()
	buf := make([]byte, offset+length)
	if _, err := io.ReadFull(d, buf); err != nil {
		return nil, errors.Wrap(err, "xcrypto: expanding PRG")
	}
	return buf[offset:], nil
}
