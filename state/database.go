// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"io"

	"github.com/ava-labs/avalanchego/database"
)

// Database is the durable store underneath every change set. Both
// [memdb.Database] and [pebble.Database] satisfy it.
type Database interface {
	database.KeyValueReaderWriterDeleter
	database.Batcher
	io.Closer
}
