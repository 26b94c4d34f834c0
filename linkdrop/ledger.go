// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/holiman/uint256"
	"github.com/near/borsh-go"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

// State
// STATE => root record, present once the contract is initialized
// a/ (ledger)
//   -> [curve][public key] => u128 balance

const (
	rootKey      = "STATE"
	ledgerPrefix = "a"

	// ed25519CurveTag is the curve byte of a borsh encoded public key.
	ed25519CurveTag byte = 0
)

type rootRecord struct {
	LedgerPrefix []byte
}

func initialize(ctx context.Context, mu state.Mutable) error {
	if _, err := mu.GetValue(ctx, []byte(rootKey)); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	v, err := borsh.Serialize(rootRecord{LedgerPrefix: []byte(ledgerPrefix)})
	if err != nil {
		return err
	}
	return mu.Insert(ctx, []byte(rootKey), v)
}

func checkInitialized(ctx context.Context, im state.Immutable) error {
	_, err := im.GetValue(ctx, []byte(rootKey))
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotInitialized
	}
	return err
}

// Ledger maps public keys to the balance claimable with them. Every
// entry lives in the contract's own storage, so a Ledger is cheap to
// build and is built anew for every invocation.
type Ledger struct {
	mu state.Mutable
}

func NewLedger(mu state.Mutable) *Ledger {
	return &Ledger{mu: state.NewPrefixedMutable([]byte(ledgerPrefix), mu)}
}

func LedgerKey(pk ed25519.PublicKey) []byte {
	k := make([]byte, 0, consts.ByteLen+ed25519.PublicKeyLen)
	k = append(k, ed25519CurveTag)
	return append(k, pk[:]...)
}

func (l *Ledger) Get(ctx context.Context, pk ed25519.PublicKey) (*uint256.Int, error) {
	v, err := l.mu.GetValue(ctx, LedgerKey(pk))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, pk)
	}
	if err != nil {
		return nil, err
	}
	return codec.UnmarshalU128(v)
}

func (l *Ledger) Has(ctx context.Context, pk ed25519.PublicKey) (bool, error) {
	_, err := l.Get(ctx, pk)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Put overwrites the balance of [pk].
func (l *Ledger) Put(ctx context.Context, pk ed25519.PublicKey, balance *uint256.Int) error {
	v, err := codec.MarshalU128(balance)
	if err != nil {
		return err
	}
	return l.mu.Insert(ctx, LedgerKey(pk), v)
}

// Add credits [amount] to [pk], creating the entry if needed.
func (l *Ledger) Add(ctx context.Context, pk ed25519.PublicKey, amount *uint256.Int) (*uint256.Int, error) {
	bal, err := l.Get(ctx, pk)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		bal = new(uint256.Int)
	case err != nil:
		return nil, err
	}
	nbal, err := codec.AddU128(bal, amount)
	if err != nil {
		return nil, err
	}
	return nbal, l.Put(ctx, pk, nbal)
}

// Remove deletes the entry of [pk] and returns the balance it held.
func (l *Ledger) Remove(ctx context.Context, pk ed25519.PublicKey) (*uint256.Int, error) {
	bal, err := l.Get(ctx, pk)
	if err != nil {
		return nil, err
	}
	return bal, l.mu.Remove(ctx, LedgerKey(pk))
}
