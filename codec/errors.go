// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrU128Overflow     = errors.New("u128 overflow")
	ErrU128Underflow    = errors.New("u128 underflow")
	ErrMissingU128      = errors.New("missing u128 value")
)
