// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
)

const (
	MethodNew                        = "new"
	MethodSend                       = "send"
	MethodCreateAccountAdvanced      = "create_account_advanced"
	MethodCreateAccountAndClaim      = "create_account_and_claim"
	MethodOnAccountCreated           = "on_account_created"
	MethodOnAccountCreatedAndClaimed = "on_account_created_and_claimed"
	MethodGetKeyBalance              = "get_key_balance"
	MethodGetKeyInformation          = "get_key_information"

	// DefaultCallbackGas is attached to every account creation callback.
	DefaultCallbackGas = 13 * consts.Tgas
)

var (
	_ host.Contract = (*Contract)(nil)

	// Code is the blob an account deploys to run the linkdrop contract.
	Code = []byte("github.com/ava-labs/linkdrop/linkdrop")

	// DefaultAccessKeyAllowance is 1 NEAR.
	DefaultAccessKeyAllowance = codec.MustParseU128("1000000000000000000000000")
)

type Config struct {
	CallbackGas        uint64       `json:"callbackGas"`
	AccessKeyAllowance *uint256.Int `json:"accessKeyAllowance"`
}

func NewDefaultConfig() Config {
	return Config{
		CallbackGas:        DefaultCallbackGas,
		AccessKeyAllowance: new(uint256.Int).Set(DefaultAccessKeyAllowance),
	}
}

// Contract is the linkdrop. It keeps no state of its own: everything
// lives in the storage of the account running it.
type Contract struct {
	cfg Config
}

func New(cfg Config) (*Contract, error) {
	if cfg.CallbackGas == 0 || cfg.CallbackGas > consts.MaxGas {
		return nil, fmt.Errorf("%w: callback gas %d", ErrInvalidArguments, cfg.CallbackGas)
	}
	if err := codec.VerifyU128(cfg.AccessKeyAllowance); err != nil {
		return nil, fmt.Errorf("%w: access key allowance: %w", ErrInvalidArguments, err)
	}
	return &Contract{cfg: cfg}, nil
}

type sendArgs struct {
	PublicKey ed25519.PublicKey `json:"public_key"`
}

type createAccountAdvancedArgs struct {
	NewAccountID codec.AccountID       `json:"new_account_id"`
	Options      *CreateAccountOptions `json:"options"`
}

type createAccountAndClaimArgs struct {
	NewAccountID codec.AccountID   `json:"new_account_id"`
	NewPublicKey ed25519.PublicKey `json:"new_public_key"`
}

type keyArgs struct {
	Key ed25519.PublicKey `json:"key"`
}

func parseArgs(args []byte, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return nil
}

func verifyAmount(amount *uint256.Int) error {
	if err := codec.VerifyU128(amount); err != nil {
		return fmt.Errorf("%w: amount: %w", ErrInvalidArguments, err)
	}
	return nil
}

// Call dispatches a function call to the entry point named [method].
// Arguments and results are JSON.
func (c *Contract) Call(ctx context.Context, env host.Env, method string, args []byte) ([]byte, error) {
	if method == MethodNew {
		if err := initialize(ctx, env.State()); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := checkInitialized(ctx, env.State()); err != nil {
		return nil, err
	}

	switch method {
	case MethodSend:
		var a sendArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return result(c.Send(ctx, env, a.PublicKey))
	case MethodCreateAccountAdvanced:
		var a createAccountAdvancedArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return returnPromise(env)(c.CreateAccountAdvanced(ctx, env, a.NewAccountID, a.Options))
	case MethodCreateAccountAndClaim:
		var a createAccountAndClaimArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return returnPromise(env)(c.CreateAccountAndClaim(ctx, env, a.NewAccountID, a.NewPublicKey))
	case MethodOnAccountCreated:
		var a onAccountCreatedArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		if err := verifyAmount(a.Amount); err != nil {
			return nil, err
		}
		return result(c.OnAccountCreated(ctx, env, a.PredecessorAccountID, a.Amount))
	case MethodOnAccountCreatedAndClaimed:
		var a onAccountCreatedAndClaimedArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		if err := verifyAmount(a.Amount); err != nil {
			return nil, err
		}
		return result(c.OnAccountCreatedAndClaimed(ctx, env, a.Amount))
	case MethodGetKeyBalance:
		var a keyArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return result(GetKeyBalance(ctx, NewLedger(env.State()), a.Key))
	case MethodGetKeyInformation:
		var a keyArgs
		if err := parseArgs(args, &a); err != nil {
			return nil, err
		}
		return result(GetKeyInformation(ctx, NewLedger(env.State()), a.Key))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func result[T any](v T, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func returnPromise(env host.Env) func(host.PromiseID, error) ([]byte, error) {
	return func(id host.PromiseID, err error) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return nil, env.Return(id)
	}
}
