// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/crypto/ed25519"
)

type KeyInfo struct {
	Balance *uint256.Int `json:"balance"`
}

// KeyInformation is either {"Ok":{"balance":"N"}} or {"Err":"Key is missing"}.
type KeyInformation struct {
	Ok  *KeyInfo `json:"Ok,omitempty"`
	Err string   `json:"Err,omitempty"`
}

// GetKeyBalance fails with [ErrKeyNotFound] for unknown keys.
func GetKeyBalance(ctx context.Context, l *Ledger, pk ed25519.PublicKey) (*uint256.Int, error) {
	return l.Get(ctx, pk)
}

// GetKeyInformation reports a missing key as a value, not an error.
func GetKeyInformation(ctx context.Context, l *Ledger, pk ed25519.PublicKey) (*KeyInformation, error) {
	bal, err := l.Get(ctx, pk)
	switch {
	case err == nil:
		return &KeyInformation{Ok: &KeyInfo{Balance: bal}}, nil
	case errors.Is(err, ErrKeyNotFound):
		return &KeyInformation{Err: KeyMissing}, nil
	default:
		return nil, err
	}
}
