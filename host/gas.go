// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"fmt"

	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	Ggas uint64 = consts.Tgas / 1_000

	FunctionCallBaseCost = 2 * consts.Tgas
	PromiseBaseCost      = consts.Tgas

	StorageReadBaseCost   = 50 * Ggas
	StorageWriteBaseCost  = 100 * Ggas
	StorageRemoveBaseCost = 100 * Ggas
	StorageByteCost       = 10_000_000

	CreateAccountCost = 100 * Ggas
	TransferCost      = 100 * Ggas
	AddKeyCost        = 100 * Ggas
	DeleteKeyCost     = 100 * Ggas
	FunctionCallCost  = 200 * Ggas
	DeployBaseCost    = 200 * Ggas
	DeployByteCost    = 5_000_000
)

// ActionCost is charged to whoever issues [a], on top of any prepaid gas.
func ActionCost(a *Action) uint64 {
	switch {
	case a.CreateAccount != nil:
		return CreateAccountCost
	case a.DeployContract != nil:
		return DeployBaseCost + DeployByteCost*uint64(len(a.DeployContract.Code))
	case a.FunctionCall != nil:
		return FunctionCallCost + StorageByteCost*uint64(len(a.FunctionCall.Args))
	case a.Transfer != nil:
		return TransferCost
	case a.AddKey != nil:
		return AddKeyCost
	case a.DeleteKey != nil:
		return DeleteKeyCost
	default:
		return 0
	}
}

// BatchCost is the gas needed to issue [b], including the gas it
// prepays for its function calls.
func BatchCost(b *ActionBatch) (uint64, error) {
	total, err := b.PrepaidGas()
	if err != nil {
		return 0, err
	}
	total, err = smath.Add64(total, PromiseBaseCost)
	for i := 0; err == nil && i < len(b.Actions); i++ {
		total, err = smath.Add64(total, ActionCost(&b.Actions[i]))
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGasLimitExceeded, err)
	}
	return total, nil
}

type gasMeter struct {
	limit uint64
	used  uint64
}

func newGasMeter(limit uint64) *gasMeter {
	return &gasMeter{limit: limit}
}

func (g *gasMeter) Charge(amount uint64) error {
	if g.limit-g.used < amount {
		g.used = g.limit
		return fmt.Errorf("%w: limit=%d", ErrOutOfGas, g.limit)
	}
	g.used += amount
	return nil
}

func (g *gasMeter) Used() uint64 {
	return g.used
}

func (g *gasMeter) Remaining() uint64 {
	return g.limit - g.used
}

var _ state.Mutable = (*meteredMutable)(nil)

// meteredMutable charges every storage operation against a gasMeter.
type meteredMutable struct {
	inner state.Mutable
	gas   *gasMeter
}

func (m *meteredMutable) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := m.gas.Charge(StorageReadBaseCost + StorageByteCost*uint64(len(key))); err != nil {
		return nil, err
	}
	v, err := m.inner.GetValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := m.gas.Charge(StorageByteCost * uint64(len(v))); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *meteredMutable) Insert(ctx context.Context, key []byte, value []byte) error {
	if err := m.gas.Charge(StorageWriteBaseCost + StorageByteCost*uint64(len(key)+len(value))); err != nil {
		return err
	}
	return m.inner.Insert(ctx, key, value)
}

func (m *meteredMutable) Remove(ctx context.Context, key []byte) error {
	if err := m.gas.Charge(StorageRemoveBaseCost + StorageByteCost*uint64(len(key))); err != nil {
		return err
	}
	return m.inner.Remove(ctx, key)
}
