// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xcrypto

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20"
)

// XorPage XORs buf in place with the ChaCha20 keystream produced under key,
// using the page index as a positional nonce (§4.6 EncryptEncoder). Each
// bucket is encrypted with a distinct nonce, so the same key is never reused
// against the same keystream offset twice.
func XorPage(key Key, pageIndex uint64, buf []byte) error {
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], pageIndex)

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return errors.Wrap(err, "xcrypto: constructing ChaCha20 cipher")
	}
	c.XORKeyStream(buf, buf)
	return nil
}
