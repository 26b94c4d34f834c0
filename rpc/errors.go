// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrMissingTransaction = errors.New("missing transaction")
	ErrUnexpectedStatus   = errors.New("unexpected status code")
	ErrClosed             = errors.New("closed")
)
