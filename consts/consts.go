// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	IntLen    = 4
	Uint64Len = 8
	U128Len   = 16
	HashLen   = 32
	MaxUint64 = ^uint64(0)

	// Tgas is 10^12 units of gas.
	Tgas uint64 = 1_000_000_000_000
	// MaxGas is the most gas a single transaction may attach.
	MaxGas = 300 * Tgas
)
