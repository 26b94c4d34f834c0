// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

var (
	_ Env           = (*invocation)(nil)
	_ state.Mutable = (*readOnlyMutable)(nil)
)

// outgoing is a promise created by an invocation. It becomes a receipt
// once the invocation commits.
type outgoing struct {
	batch *ActionBatch
	after *PromiseID
}

// invocation is the [Env] of a single function call.
type invocation struct {
	log      logging.Logger
	receipt  *Receipt
	deposit  *uint256.Int
	readOnly bool

	gas   *gasMeter
	root  state.Mutable
	state state.Mutable

	promises *[]*outgoing
	returned *PromiseID
}

func newInvocation(
	log logging.Logger,
	receipt *Receipt,
	deposit *uint256.Int,
	gas uint64,
	root state.Mutable,
	promises *[]*outgoing,
	readOnly bool,
) *invocation {
	meter := newGasMeter(gas)
	if readOnly {
		root = &readOnlyMutable{root}
	}
	if deposit == nil {
		deposit = new(uint256.Int)
	}
	return &invocation{
		log:      log,
		receipt:  receipt,
		deposit:  deposit,
		readOnly: readOnly,
		gas:      meter,
		root:     root,
		state:    &meteredMutable{inner: ContractState(root, receipt.Receiver), gas: meter},
		promises: promises,
	}
}

func (i *invocation) CurrentAccount() codec.AccountID {
	return i.receipt.Receiver
}

func (i *invocation) Predecessor() codec.AccountID {
	return i.receipt.Predecessor
}

func (i *invocation) Signer() codec.AccountID {
	return i.receipt.Signer
}

func (i *invocation) SignerPublicKey() ed25519.PublicKey {
	return i.receipt.SignerPublicKey
}

func (i *invocation) AttachedDeposit() *uint256.Int {
	return new(uint256.Int).Set(i.deposit)
}

func (i *invocation) PrepaidGas() uint64 {
	return i.gas.limit
}

func (i *invocation) UsedGas() uint64 {
	return i.gas.Used()
}

func (i *invocation) AccountBalance(ctx context.Context) (*uint256.Int, error) {
	if err := i.gas.Charge(StorageReadBaseCost); err != nil {
		return nil, err
	}
	a, err := GetAccount(ctx, i.root, i.receipt.Receiver)
	if err != nil {
		return nil, err
	}
	return a.Balance, nil
}

func (i *invocation) State() state.Mutable {
	return i.state
}

func (i *invocation) Log() logging.Logger {
	return i.log
}

func (i *invocation) PromiseResults() []PromiseResult {
	return i.receipt.Results
}

func (i *invocation) Promise(ctx context.Context, batch *ActionBatch) (PromiseID, error) {
	return i.schedule(ctx, nil, batch)
}

func (i *invocation) Then(ctx context.Context, after PromiseID, batch *ActionBatch) (PromiseID, error) {
	if err := i.checkPromise(after); err != nil {
		return 0, err
	}
	return i.schedule(ctx, &after, batch)
}

func (i *invocation) Return(id PromiseID) error {
	if i.readOnly {
		return ErrReadOnly
	}
	if err := i.checkPromise(id); err != nil {
		return err
	}
	i.returned = &id
	return nil
}

func (i *invocation) checkPromise(id PromiseID) error {
	if uint64(id) >= uint64(len(*i.promises)) {
		return fmt.Errorf("%w: %d", ErrInvalidPromise, id)
	}
	return nil
}

func (i *invocation) schedule(ctx context.Context, after *PromiseID, batch *ActionBatch) (PromiseID, error) {
	if i.readOnly {
		return 0, ErrReadOnly
	}
	if err := batch.Verify(); err != nil {
		return 0, err
	}
	cost, err := BatchCost(batch)
	if err != nil {
		return 0, err
	}
	if err := i.gas.Charge(cost); err != nil {
		return 0, err
	}
	deposit, err := batch.Deposit()
	if err != nil {
		return 0, err
	}
	if !deposit.IsZero() {
		if _, err := SubBalance(ctx, i.root, i.receipt.Receiver, deposit); err != nil {
			return 0, err
		}
	}
	cp := &ActionBatch{Receiver: batch.Receiver, Actions: append([]Action(nil), batch.Actions...)}
	*i.promises = append(*i.promises, &outgoing{batch: cp, after: after})
	return PromiseID(len(*i.promises) - 1), nil
}

// readOnlyMutable rejects every write made during a view call.
type readOnlyMutable struct {
	inner state.Immutable
}

func (r *readOnlyMutable) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	return r.inner.GetValue(ctx, key)
}

func (*readOnlyMutable) Insert(context.Context, []byte, []byte) error {
	return ErrReadOnly
}

func (*readOnlyMutable) Remove(context.Context, []byte) error {
	return ErrReadOnly
}
