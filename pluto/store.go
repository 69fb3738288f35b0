// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pluto

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/sse/crypto/database"
)

func slotKey(index uint64) []byte {
	key := make([]byte, 9)
	key[0] = 's'
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

func writeCuckooTable(db database.Database, table *CuckooTable) error {
	batch := db.NewBatch()
	for i := uint64(0); i < table.Size(); i++ {
		block, ok := table.slotAt(i)
		if !ok {
			continue
		}
		encoded := encodeBlock(block)
		if err := batch.Put(slotKey(i), encoded); err != nil {
			return err
		}
	}
	meta := make([]byte, 8)
	binary.LittleEndian.PutUint64(meta, table.Size())
	if err := batch.Put([]byte("m"), meta); err != nil {
		return err
	}
	return batch.Write()
}

func encodeBlock(block Block) []byte {
	buf := make([]byte, 0, 32+8+len(block.Values)*72)
	buf = append(buf, block.CoreKey[:]...)
	buf = appendTethysU64(buf, uint64(len(block.Values)))
	for _, v := range block.Values {
		buf = appendTethysU64(buf, uint64(len(v)))
		buf = append(buf, v...)
	}
	return buf
}

func decodeBlock(buf []byte) (Block, error) {
	if len(buf) < 40 {
		return Block{}, errors.New("pluto: corrupt block record")
	}
	var block Block
	copy(block.CoreKey[:], buf[:32])
	off := 32
	n := binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	block.Values = make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		if off+8 > len(buf) {
			return Block{}, errors.New("pluto: corrupt block record")
		}
		vlen := binary.LittleEndian.Uint64(buf[off : off+8])
		off += 8
		if off+int(vlen) > len(buf) {
			return Block{}, errors.New("pluto: corrupt block record")
		}
		block.Values = append(block.Values, buf[off:off+int(vlen)])
		off += int(vlen)
	}
	return block, nil
}

func appendTethysU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// ReadBlock fetches and decodes the slot at index from a cuckoo table
// database written by writeCuckooTable.
func ReadBlock(db database.Database, index uint64) (Block, bool, error) {
	v, err := db.Get(slotKey(index))
	if err != nil {
		return Block{}, false, nil
	}
	block, err := decodeBlock(v)
	if err != nil {
		return Block{}, false, err
	}
	return block, true, nil
}

// ReadTableSize returns the slot count recorded by writeCuckooTable.
func ReadTableSize(db database.Database) (uint64, error) {
	meta, err := db.Get([]byte("m"))
	if err != nil {
		return 0, errors.Wrap(err, "pluto: reading cuckoo table metadata")
	}
	if len(meta) != 8 {
		return 0, errors.New("pluto: corrupt cuckoo table metadata")
	}
	return binary.LittleEndian.Uint64(meta), nil
}
