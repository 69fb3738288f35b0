// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

import (
	"github.com/luxfi/sse/rcprf"
	"github.com/luxfi/sse/xcrypto"
)

// deriveUpdateToken splits PRG(leaf)[0 : 16+indexSize] into a 16-byte
// update_token and an indexSize-byte mask (§4.2). The update_token is the
// server's TokenMap key; the mask XORed with the real index is the value
// stored under it, so the server's map never holds a plaintext index.
func deriveUpdateToken(leaf rcprf.LeafToken, indexSize int) (updateToken [UpdateTokenSize]byte, mask []byte, err error) {
	out, err := xcrypto.Derive(leaf, 0, UpdateTokenSize+indexSize)
	if err != nil {
		return updateToken, nil, err
	}
	copy(updateToken[:], out[:UpdateTokenSize])
	mask = make([]byte, indexSize)
	copy(mask, out[UpdateTokenSize:])
	return updateToken, mask, nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func encodeIndex(index uint64, size int) []byte {
	buf := make([]byte, size)
	v := index
	for i := 0; i < size && i < 8; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

func decodeIndex(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		if i >= 8 {
			continue
		}
		v = (v << 8) | uint64(buf[i])
	}
	return v
}
