// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize     = units.KiB
	writeBufferSize    = 4 * units.KiB
	maxReadMessageSize = units.KiB
	maxPendingMessages = 256
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
)
