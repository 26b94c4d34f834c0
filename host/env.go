// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

//go:generate go run go.uber.org/mock/mockgen -package=host -destination=env_mock.go . Env

// Env is everything a contract can observe or do during one invocation.
// Every mutation made through an Env is applied atomically: if the
// invocation returns an error, none of its state changes or promises
// take effect.
type Env interface {
	// CurrentAccount is the account whose code is executing.
	CurrentAccount() codec.AccountID
	// Predecessor is the account that issued the invocation.
	Predecessor() codec.AccountID
	// Signer is the account that signed the originating transaction.
	Signer() codec.AccountID
	// SignerPublicKey is the key that signed the originating transaction.
	// It is carried unchanged along every receipt the transaction spawns.
	SignerPublicKey() ed25519.PublicKey
	// AttachedDeposit is the value attached to this invocation. It has
	// already been credited to CurrentAccount.
	AttachedDeposit() *uint256.Int
	PrepaidGas() uint64
	UsedGas() uint64
	// AccountBalance is the balance of CurrentAccount.
	AccountBalance(ctx context.Context) (*uint256.Int, error)

	// State is the storage space private to CurrentAccount.
	State() state.Mutable
	Log() logging.Logger

	// PromiseResults are the results of the promises this invocation was
	// scheduled after, in the order they were listed.
	PromiseResults() []PromiseResult

	// Promise schedules [batch] and debits its attached value from
	// CurrentAccount.
	Promise(ctx context.Context, batch *ActionBatch) (PromiseID, error)
	// Then schedules [batch] to run once [after] resolves. The batch
	// receives the result of [after] as its only promise result.
	Then(ctx context.Context, after PromiseID, batch *ActionBatch) (PromiseID, error)
	// Return makes the result of this invocation the result of [id].
	Return(id PromiseID) error
}
