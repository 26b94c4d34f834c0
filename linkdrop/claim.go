// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
)

// Outcome is the result of the account creation a callback reconciles.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// OutcomeOf reads the outcome from the promise results of a callback,
// which must hold exactly one result.
func OutcomeOf(results []host.PromiseResult) (Outcome, error) {
	if len(results) != 1 {
		return 0, fmt.Errorf("%w: got %d", ErrMalformedCallback, len(results))
	}
	switch results[0].Status {
	case host.StatusSuccess:
		return OutcomeSuccess, nil
	case host.StatusFailed:
		return OutcomeFailure, nil
	default:
		return 0, fmt.Errorf("%w: result status %s", ErrMalformedCallback, results[0].Status)
	}
}

// onAccountCreatedArgs carries the sponsor and amount from
// create_account_advanced to its callback.
type onAccountCreatedArgs struct {
	PredecessorAccountID codec.AccountID `json:"predecessor_account_id"`
	Amount               *uint256.Int    `json:"amount"`
}

type onAccountCreatedAndClaimedArgs struct {
	Amount *uint256.Int `json:"amount"`
}

// Send credits the attached deposit, minus the access key allowance, to
// [pk] and gives [pk] a key on the contract that may only claim.
func (c *Contract) Send(ctx context.Context, env host.Env, pk ed25519.PublicKey) (bool, error) {
	deposit := env.AttachedDeposit()
	if !deposit.Gt(c.cfg.AccessKeyAllowance) {
		return false, fmt.Errorf("%w: %s <= %s", ErrInsufficientDeposit, deposit.Dec(), c.cfg.AccessKeyAllowance.Dec())
	}
	amount, err := codec.SubU128(deposit, c.cfg.AccessKeyAllowance)
	if err != nil {
		return false, err
	}
	ledger := NewLedger(env.State())
	existed, err := ledger.Has(ctx, pk)
	if err != nil {
		return false, err
	}
	bal, err := ledger.Add(ctx, pk, amount)
	if err != nil {
		return false, err
	}
	if !existed {
		self := env.CurrentAccount()
		batch := host.NewActionBatch(self).
			AddFunctionCallKey(pk, c.cfg.AccessKeyAllowance, self, []string{MethodCreateAccountAndClaim})
		if _, err := env.Promise(ctx, batch); err != nil {
			return false, err
		}
	}
	env.Log().Debug("linkdrop funded",
		zap.Stringer("key", pk),
		zap.Stringer("balance", bal),
		zap.Bool("newKey", !existed),
	)
	return true, nil
}

// CreateAccountAdvanced creates [newAccountID] with the attached deposit
// and [opts]. The returned promise resolves to the result of
// on_account_created.
func (c *Contract) CreateAccountAdvanced(
	ctx context.Context,
	env host.Env,
	newAccountID codec.AccountID,
	opts *CreateAccountOptions,
) (host.PromiseID, error) {
	amount := env.AttachedDeposit()
	batch, err := BuildAccountRequest(newAccountID, amount, opts)
	if err != nil {
		return 0, err
	}
	create, err := env.Promise(ctx, batch)
	if err != nil {
		return 0, err
	}
	args, err := json.Marshal(onAccountCreatedArgs{
		PredecessorAccountID: env.Predecessor(),
		Amount:               amount,
	})
	if err != nil {
		return 0, err
	}
	return env.Then(ctx, create, host.NewActionBatch(env.CurrentAccount()).
		FunctionCall(MethodOnAccountCreated, args, nil, c.cfg.CallbackGas))
}

// CreateAccountAndClaim moves the balance of the signing key into a new
// account controlled by [newPK]. The signing key must be one added by
// Send, so the call comes from the contract itself.
func (c *Contract) CreateAccountAndClaim(
	ctx context.Context,
	env host.Env,
	newAccountID codec.AccountID,
	newPK ed25519.PublicKey,
) (host.PromiseID, error) {
	if env.Predecessor() != env.CurrentAccount() {
		return 0, fmt.Errorf("%w: called by %s", ErrUnauthorizedClaim, env.Predecessor())
	}
	if err := newAccountID.Verify(); err != nil {
		return 0, err
	}
	amount, err := NewLedger(env.State()).Remove(ctx, env.SignerPublicKey())
	if err != nil {
		return 0, err
	}
	create, err := env.Promise(ctx, host.NewActionBatch(newAccountID).
		CreateAccount().
		AddFullAccessKey(newPK).
		Transfer(amount))
	if err != nil {
		return 0, err
	}
	args, err := json.Marshal(onAccountCreatedAndClaimedArgs{Amount: amount})
	if err != nil {
		return 0, err
	}
	return env.Then(ctx, create, host.NewActionBatch(env.CurrentAccount()).
		FunctionCall(MethodOnAccountCreatedAndClaimed, args, nil, c.cfg.CallbackGas))
}

func checkCallback(env host.Env) (Outcome, error) {
	if env.Predecessor() != env.CurrentAccount() {
		return 0, fmt.Errorf("%w: called by %s", ErrUnauthorizedCallback, env.Predecessor())
	}
	return OutcomeOf(env.PromiseResults())
}

// OnAccountCreated returns [amount] to [predecessor] when the account
// creation failed. The failed creation has already refunded [amount] to
// the contract.
func (c *Contract) OnAccountCreated(
	ctx context.Context,
	env host.Env,
	predecessor codec.AccountID,
	amount *uint256.Int,
) (bool, error) {
	outcome, err := checkCallback(env)
	if err != nil {
		return false, err
	}
	switch outcome {
	case OutcomeSuccess:
		return true, nil
	case OutcomeFailure:
		if _, err := env.Promise(ctx, host.NewActionBatch(predecessor).Transfer(amount)); err != nil {
			return false, err
		}
		env.Log().Info("account creation failed, returning deposit",
			zap.Stringer("predecessor", predecessor),
			zap.Stringer("amount", amount),
		)
		return false, nil
	default:
		return false, fmt.Errorf("%w: outcome %s", ErrMalformedCallback, outcome)
	}
}

// OnAccountCreatedAndClaimed removes the claiming key from the contract
// on success, and restores its balance on failure so the claim can be
// retried.
func (c *Contract) OnAccountCreatedAndClaimed(
	ctx context.Context,
	env host.Env,
	amount *uint256.Int,
) (bool, error) {
	outcome, err := checkCallback(env)
	if err != nil {
		return false, err
	}
	pk := env.SignerPublicKey()
	switch outcome {
	case OutcomeSuccess:
		self := env.CurrentAccount()
		if _, err := env.Promise(ctx, host.NewActionBatch(self).DeleteKey(pk)); err != nil {
			return false, err
		}
		return true, nil
	case OutcomeFailure:
		if _, err := NewLedger(env.State()).Add(ctx, pk, amount); err != nil {
			return false, err
		}
		env.Log().Info("claim failed, restoring key balance",
			zap.Stringer("key", pk),
			zap.Stringer("amount", amount),
		)
		return false, nil
	default:
		return false, fmt.Errorf("%w: outcome %s", ErrMalformedCallback, outcome)
	}
}
