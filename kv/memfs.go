// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kv

import "github.com/cockroachdb/pebble/vfs"

func vfsMemFS() vfs.FS {
	return vfs.NewMem()
}
