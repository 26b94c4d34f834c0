// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/host"
)

// LimitedAccessKey is a function-call key added to a new account.
// MethodNames is a comma separated list, empty for any method.
type LimitedAccessKey struct {
	PublicKey   ed25519.PublicKey `json:"public_key"`
	Allowance   *uint256.Int      `json:"allowance"`
	ReceiverID  codec.AccountID   `json:"receiver_id"`
	MethodNames string            `json:"method_names"`
}

func (k *LimitedAccessKey) Methods() []string {
	if k.MethodNames == "" {
		return nil
	}
	return strings.Split(k.MethodNames, ",")
}

// CreateAccountOptions configures the account created by
// create_account_advanced. A nil field is absent. A non-nil empty field
// is present.
type CreateAccountOptions struct {
	FullAccessKeys    []ed25519.PublicKey `json:"full_access_keys"`
	LimitedAccessKeys []LimitedAccessKey  `json:"limited_access_keys"`
	ContractBytes     ContractBytes       `json:"contract_bytes"`
}

func (o *CreateAccountOptions) Verify() error {
	if o == nil || (o.FullAccessKeys == nil && o.LimitedAccessKeys == nil && o.ContractBytes == nil) {
		return ErrInvalidConfiguration
	}
	for i := range o.LimitedAccessKeys {
		k := &o.LimitedAccessKeys[i]
		if err := codec.VerifyU128(k.Allowance); err != nil {
			return fmt.Errorf("%w: limited key %d allowance: %w", ErrInvalidArguments, i, err)
		}
		if err := k.ReceiverID.Verify(); err != nil {
			return fmt.Errorf("%w: limited key %d receiver: %w", ErrInvalidArguments, i, err)
		}
	}
	return nil
}

// BuildAccountRequest returns the actions creating [target] with [funds]
// and [opts]: create, transfer, full keys, limited keys, then deploy.
func BuildAccountRequest(
	target codec.AccountID,
	funds *uint256.Int,
	opts *CreateAccountOptions,
) (*host.ActionBatch, error) {
	if err := opts.Verify(); err != nil {
		return nil, err
	}
	if err := target.Verify(); err != nil {
		return nil, err
	}
	if err := codec.VerifyU128(funds); err != nil {
		return nil, err
	}
	batch := host.NewActionBatch(target).
		CreateAccount().
		Transfer(funds)
	for _, pk := range opts.FullAccessKeys {
		batch.AddFullAccessKey(pk)
	}
	for i := range opts.LimitedAccessKeys {
		k := &opts.LimitedAccessKeys[i]
		batch.AddFunctionCallKey(k.PublicKey, k.Allowance, k.ReceiverID, k.Methods())
	}
	if opts.ContractBytes != nil {
		batch.DeployContract(opts.ContractBytes)
	}
	return batch, nil
}

// ContractBytes is code carried as a JSON array of byte values.
type ContractBytes []byte

func (c ContractBytes) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	values := make([]uint16, len(c))
	for i, b := range c {
		values[i] = uint16(b)
	}
	return json.Marshal(values)
}

func (c *ContractBytes) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var values []uint8Value
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	out := make(ContractBytes, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	*c = out
	return nil
}

// uint8Value decodes a JSON number into a byte, rejecting out of range
// values.
type uint8Value uint8

func (u *uint8Value) UnmarshalJSON(b []byte) error {
	var v uint16
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v > 0xff {
		return fmt.Errorf("%w: byte value %d", ErrInvalidArguments, v)
	}
	*u = uint8Value(v)
	return nil
}
