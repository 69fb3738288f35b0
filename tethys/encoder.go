// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/xcrypto"
)

// Encoder serializes the values placed in one bucket into that bucket's
// fixed-size page (§4.6). EncodeSeparate is the default wire format: each
// value is length-prefixed, and the bucket is terminated by a zero-length
// marker.
type Encoder interface {
	// StartBlockEncoding begins a new bucket of pageBytes total size.
	StartBlockEncoding(pageBytes int)
	// Encode appends one key/value pair's serialized bytes to the
	// current bucket.
	Encode(key, value []byte) error
	// FinishBlockEncoding finalizes and returns the bucket's page bytes.
	FinishBlockEncoding() ([]byte, error)
}

// EncodeSeparate is the default Encoder (§4.6): each entry is written as
// [u64 key len][key][u64 value len][value]. Encode rejects an entry that
// would leave no room for the terminator, and FinishBlockEncoding appends
// a single zero-length marker and zero-pads the page to pageBytes.
type EncodeSeparate struct {
	pageBytes int
	buf       []byte
}

var _ Encoder = (*EncodeSeparate)(nil)

func (e *EncodeSeparate) StartBlockEncoding(pageBytes int) {
	e.pageBytes = pageBytes
	e.buf = make([]byte, 0, pageBytes)
}

func (e *EncodeSeparate) Encode(key, value []byte) error {
	entryLen := 8 + len(key) + 8 + len(value)
	if len(e.buf)+entryLen+8 > e.pageBytes {
		return errors.New("tethys: bucket overflow during encoding")
	}
	e.buf = appendU64(e.buf, uint64(len(key)))
	e.buf = append(e.buf, key...)
	e.buf = appendU64(e.buf, uint64(len(value)))
	e.buf = append(e.buf, value...)
	return nil
}

func (e *EncodeSeparate) FinishBlockEncoding() ([]byte, error) {
	e.buf = appendU64(e.buf, 0)
	page := make([]byte, e.pageBytes)
	copy(page, e.buf)
	return page, nil
}

// DecodeSeparate parses a page written by EncodeSeparate back into its
// key/value pairs, stopping at the zero-length terminator.
func DecodeSeparate(page []byte) ([][2][]byte, error) {
	var entries [][2][]byte
	off := 0
	for {
		if off+8 > len(page) {
			return nil, ErrCorruptData
		}
		keyLen := binary.LittleEndian.Uint64(page[off : off+8])
		off += 8
		if keyLen == 0 {
			return entries, nil
		}
		if off+int(keyLen) > len(page) {
			return nil, ErrCorruptData
		}
		key := page[off : off+int(keyLen)]
		off += int(keyLen)

		if off+8 > len(page) {
			return nil, ErrCorruptData
		}
		valLen := binary.LittleEndian.Uint64(page[off : off+8])
		off += 8
		if off+int(valLen) > len(page) {
			return nil, ErrCorruptData
		}
		value := page[off : off+int(valLen)]
		off += int(valLen)

		entries = append(entries, [2][]byte{key, value})
	}
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// EncryptEncoder wraps another Encoder and XORs the finished page with a
// ChaCha20 keystream keyed by key, using the page's own index as the
// nonce (§4.6). Decryption is symmetric: XOR again with the same
// page index before decoding.
type EncryptEncoder struct {
	inner     Encoder
	key       xcrypto.Key
	pageIndex uint64
}

var _ Encoder = (*EncryptEncoder)(nil)

// NewEncryptEncoder wraps inner so that the pages it produces for
// consecutive buckets are each encrypted under a distinct page index,
// starting at startPageIndex.
func NewEncryptEncoder(inner Encoder, key xcrypto.Key, startPageIndex uint64) *EncryptEncoder {
	return &EncryptEncoder{inner: inner, key: key, pageIndex: startPageIndex}
}

func (e *EncryptEncoder) StartBlockEncoding(pageBytes int) {
	e.inner.StartBlockEncoding(pageBytes)
}

func (e *EncryptEncoder) Encode(key, value []byte) error {
	return e.inner.Encode(key, value)
}

func (e *EncryptEncoder) FinishBlockEncoding() ([]byte, error) {
	page, err := e.inner.FinishBlockEncoding()
	if err != nil {
		return nil, err
	}
	if err := xcrypto.XorPage(e.key, e.pageIndex, page); err != nil {
		return nil, err
	}
	e.pageIndex++
	return page, nil
}

// DecryptPage undoes EncryptEncoder's XOR so the page can be handed to
// DecodeSeparate.
func DecryptPage(key xcrypto.Key, pageIndex uint64, page []byte) error {
	return xcrypto.XorPage(key, pageIndex, page)
}
