// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xcrypto

import "github.com/zeebo/blake3"

// HashSize is the output width of the unkeyed collision-resistant Hash
// primitive (§6 External Interfaces: `Hash`).
const HashSize = 32

// Hash hashes data with BLAKE3, unkeyed. It is used for the Diana keyword
// index (the first 16 bytes of the result, §4.3) and for the Tethys/Pluto
// core key `Hash(keyword_token || block_index)` (§4.7).
func Hash(data ...[]byte) [HashSize]byte {
	h := blake3.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}
