// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package xcrypto provides the cryptographic primitives the core schemes are
// built on: keys, a keyed PRF, a length-doubling PRG, an unkeyed hash, and
// ChaCha20. None of these primitives are scheme-specific; rcprf, diana,
// tethys and pluto all consume them through this package.
package xcrypto

import (
	"crypto/rand"
	"crypto/subtle"

	"github.com/cockroachdb/errors"
)

// KeySize is the width, in bytes, of every master/derived key in the core.
const KeySize = 32

// ErrInvalidKeyLength is returned when a key is built from the wrong number
// of bytes.
var ErrInvalidKeyLength = errors.New("xcrypto: invalid key length")

// Key is a fixed-width secret. It is never serialised except through an
// authenticated write of a key file (§3 Data model).
type Key [KeySize]byte

// NewKey builds a Key from exactly KeySize bytes.
func NewKey(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, errors.Wrapf(ErrInvalidKeyLength, "got %d bytes, want %d", len(b), KeySize)
	}
	copy(k[:], b)
	return k, nil
}

// RandomKey draws a fresh key from the system CSPRNG.
func RandomKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return k, errors.Wrap(err, "xcrypto: generating random key")
	}
	return k, nil
}

// Zeroize overwrites the key in place. Go cannot guarantee the compiler will
// not elide this, but it matches the teacher's best-effort key hygiene.
func (k *Key) Zeroize() {
	for i := range k {
		k[i] = 0
	}
}

// Equal performs a constant-time comparison.
func (k Key) Equal(other Key) bool {
	return subtle.ConstantTimeCompare(k[:], other[:]) == 1
}

// Bytes returns the key's bytes. Callers must not retain or mutate the
// returned slice past the key's lifetime.
func (k Key) Bytes() []byte {
	return k[:]
}
