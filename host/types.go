// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/holiman/uint256"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Action is a single step of an [ActionBatch]. Exactly one field is set.
type Action struct {
	CreateAccount  *CreateAccount  `json:"createAccount,omitempty"`
	DeployContract *DeployContract `json:"deployContract,omitempty"`
	FunctionCall   *FunctionCall   `json:"functionCall,omitempty"`
	Transfer       *Transfer       `json:"transfer,omitempty"`
	AddKey         *AddKey         `json:"addKey,omitempty"`
	DeleteKey      *DeleteKey      `json:"deleteKey,omitempty"`
}

type CreateAccount struct{}

type DeployContract struct {
	Code codec.Bytes `json:"code"`
}

type FunctionCall struct {
	Method  string          `json:"method"`
	Args    json.RawMessage `json:"args,omitempty"`
	Gas     uint64          `json:"gas"`
	Deposit *uint256.Int    `json:"deposit,omitempty"`
}

type Transfer struct {
	Deposit *uint256.Int `json:"deposit"`
}

type AddKey struct {
	PublicKey  ed25519.PublicKey   `json:"publicKey"`
	Permission AccessKeyPermission `json:"permission"`
}

type DeleteKey struct {
	PublicKey ed25519.PublicKey `json:"publicKey"`
}

// AccessKeyPermission grants full access when FunctionCall is nil.
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission `json:"functionCall,omitempty"`
}

func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

// FunctionCallPermission restricts a key to calling [MethodNames] on
// [ReceiverID]. An empty method list allows any method.
type FunctionCallPermission struct {
	Allowance   *uint256.Int    `json:"allowance"`
	ReceiverID  codec.AccountID `json:"receiverId"`
	MethodNames []string        `json:"methodNames"`
}

func (p *FunctionCallPermission) Allows(method string) bool {
	if len(p.MethodNames) == 0 {
		return true
	}
	for _, m := range p.MethodNames {
		if m == method {
			return true
		}
	}
	return false
}

type AccessKey struct {
	Nonce      uint64              `json:"nonce"`
	Permission AccessKeyPermission `json:"permission"`
}

type Account struct {
	Balance  *uint256.Int `json:"balance"`
	CodeHash ids.ID       `json:"codeHash"`
}

func (a *Action) Verify() error {
	set := 0
	if a.CreateAccount != nil {
		set++
	}
	if a.DeployContract != nil {
		set++
	}
	if a.FunctionCall != nil {
		set++
		if a.FunctionCall.Deposit != nil {
			if err := codec.VerifyU128(a.FunctionCall.Deposit); err != nil {
				return err
			}
		}
	}
	if a.Transfer != nil {
		set++
		if err := codec.VerifyU128(a.Transfer.Deposit); err != nil {
			return err
		}
	}
	if a.AddKey != nil {
		set++
		if fc := a.AddKey.Permission.FunctionCall; fc != nil {
			if err := codec.VerifyU128(fc.Allowance); err != nil {
				return err
			}
			if err := fc.ReceiverID.Verify(); err != nil {
				return err
			}
		}
	}
	if a.DeleteKey != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: %d set", ErrInvalidAction, set)
	}
	return nil
}

// Deposit is the value the action moves from the predecessor to the
// receiver.
func (a *Action) Deposit() *uint256.Int {
	switch {
	case a.Transfer != nil:
		return a.Transfer.Deposit
	case a.FunctionCall != nil && a.FunctionCall.Deposit != nil:
		return a.FunctionCall.Deposit
	default:
		return new(uint256.Int)
	}
}

func (a *Action) String() string {
	switch {
	case a.CreateAccount != nil:
		return "CreateAccount"
	case a.DeployContract != nil:
		return "DeployContract"
	case a.FunctionCall != nil:
		return "FunctionCall(" + a.FunctionCall.Method + ")"
	case a.Transfer != nil:
		return "Transfer(" + a.Transfer.Deposit.Dec() + ")"
	case a.AddKey != nil:
		return "AddKey(" + a.AddKey.PublicKey.String() + ")"
	case a.DeleteKey != nil:
		return "DeleteKey(" + a.DeleteKey.PublicKey.String() + ")"
	default:
		return "Unknown"
	}
}

// ActionBatch is a list of actions executed atomically, in order, on
// [Receiver].
type ActionBatch struct {
	Receiver codec.AccountID `json:"receiver"`
	Actions  []Action        `json:"actions"`
}

func NewActionBatch(receiver codec.AccountID) *ActionBatch {
	return &ActionBatch{Receiver: receiver}
}

func (b *ActionBatch) CreateAccount() *ActionBatch {
	b.Actions = append(b.Actions, Action{CreateAccount: &CreateAccount{}})
	return b
}

func (b *ActionBatch) DeployContract(code []byte) *ActionBatch {
	b.Actions = append(b.Actions, Action{DeployContract: &DeployContract{Code: code}})
	return b
}

func (b *ActionBatch) FunctionCall(method string, args []byte, deposit *uint256.Int, gas uint64) *ActionBatch {
	b.Actions = append(b.Actions, Action{FunctionCall: &FunctionCall{
		Method:  method,
		Args:    args,
		Gas:     gas,
		Deposit: deposit,
	}})
	return b
}

func (b *ActionBatch) Transfer(amount *uint256.Int) *ActionBatch {
	b.Actions = append(b.Actions, Action{Transfer: &Transfer{Deposit: amount}})
	return b
}

func (b *ActionBatch) AddFullAccessKey(pk ed25519.PublicKey) *ActionBatch {
	b.Actions = append(b.Actions, Action{AddKey: &AddKey{PublicKey: pk}})
	return b
}

func (b *ActionBatch) AddFunctionCallKey(
	pk ed25519.PublicKey,
	allowance *uint256.Int,
	receiver codec.AccountID,
	methods []string,
) *ActionBatch {
	b.Actions = append(b.Actions, Action{AddKey: &AddKey{
		PublicKey: pk,
		Permission: AccessKeyPermission{FunctionCall: &FunctionCallPermission{
			Allowance:   allowance,
			ReceiverID:  receiver,
			MethodNames: methods,
		}},
	}})
	return b
}

func (b *ActionBatch) DeleteKey(pk ed25519.PublicKey) *ActionBatch {
	b.Actions = append(b.Actions, Action{DeleteKey: &DeleteKey{PublicKey: pk}})
	return b
}

func (b *ActionBatch) Verify() error {
	if err := b.Receiver.Verify(); err != nil {
		return err
	}
	if len(b.Actions) == 0 {
		return ErrEmptyActions
	}
	for i := range b.Actions {
		if err := b.Actions[i].Verify(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// Deposit sums the value attached to every action.
func (b *ActionBatch) Deposit() (*uint256.Int, error) {
	total := new(uint256.Int)
	for i := range b.Actions {
		var err error
		total, err = codec.AddU128(total, b.Actions[i].Deposit())
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}

// PrepaidGas sums the gas attached to every function call.
func (b *ActionBatch) PrepaidGas() (uint64, error) {
	var total uint64
	for i := range b.Actions {
		fc := b.Actions[i].FunctionCall
		if fc == nil {
			continue
		}
		var err error
		total, err = smath.Add64(total, fc.Gas)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrGasLimitExceeded, err)
		}
	}
	return total, nil
}

// PromiseID identifies a promise created during the current invocation.
type PromiseID uint64

type Status uint8

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*s = StatusSuccess
	case "failed":
		*s = StatusFailed
	default:
		*s = StatusUnknown
	}
	return nil
}

// PromiseResult is delivered to a callback for each promise it waited on.
type PromiseResult struct {
	Status Status `json:"status"`
	Value  []byte `json:"value,omitempty"`
}
