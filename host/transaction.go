// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/consts"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

type Transaction struct {
	SignerID   codec.AccountID   `json:"signerId"`
	PublicKey  ed25519.PublicKey `json:"publicKey"`
	Nonce      uint64            `json:"nonce"`
	ReceiverID codec.AccountID   `json:"receiverId"`
	Actions    []Action          `json:"actions"`
}

// Hash is the sha256 of the borsh encoding of [tx]. It is the message
// signed by the signer.
func (tx *Transaction) Hash() (ids.ID, error) {
	b, err := borsh.Serialize(*tx)
	if err != nil {
		return ids.Empty, err
	}
	return sha256.Sum256(b), nil
}

func (tx *Transaction) Batch() *ActionBatch {
	return &ActionBatch{Receiver: tx.ReceiverID, Actions: tx.Actions}
}

func (tx *Transaction) Sign(priv ed25519.PrivateKey) (*SignedTransaction, error) {
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Transaction: *tx,
		Signature:   ed25519.Sign(hash[:], priv),
	}, nil
}

type SignedTransaction struct {
	Transaction Transaction       `json:"transaction"`
	Signature   ed25519.Signature `json:"signature"`
}

// Verify checks everything about [stx] that does not depend on state
// and returns its hash.
func (stx *SignedTransaction) Verify() (ids.ID, error) {
	tx := &stx.Transaction
	if err := tx.SignerID.Verify(); err != nil {
		return ids.Empty, err
	}
	if err := tx.Batch().Verify(); err != nil {
		return ids.Empty, err
	}
	gas, err := tx.Batch().PrepaidGas()
	if err != nil {
		return ids.Empty, err
	}
	if gas > consts.MaxGas {
		return ids.Empty, fmt.Errorf("%w: %d > %d", ErrGasLimitExceeded, gas, consts.MaxGas)
	}
	hash, err := tx.Hash()
	if err != nil {
		return ids.Empty, err
	}
	if !ed25519.Verify(hash[:], tx.PublicKey, stx.Signature) {
		return ids.Empty, ErrInvalidSignature
	}
	return hash, nil
}

// authorize checks [tx] against the signer's access key, bumps the key
// nonce and debits the value the transaction attaches.
func authorize(ctx context.Context, mu state.Mutable, tx *Transaction) error {
	key, err := GetAccessKey(ctx, mu, tx.SignerID, tx.PublicKey)
	if err != nil {
		return err
	}
	if tx.Nonce <= key.Nonce {
		return fmt.Errorf("%w: %d <= %d", ErrInvalidNonce, tx.Nonce, key.Nonce)
	}
	deposit, err := tx.Batch().Deposit()
	if err != nil {
		return err
	}
	if perm := key.Permission.FunctionCall; perm != nil {
		if len(tx.Actions) != 1 || tx.Actions[0].FunctionCall == nil {
			return ErrFunctionKeyActions
		}
		if tx.ReceiverID != perm.ReceiverID {
			return fmt.Errorf("%w: %s != %s", ErrReceiverMismatch, tx.ReceiverID, perm.ReceiverID)
		}
		if method := tx.Actions[0].FunctionCall.Method; !perm.Allows(method) {
			return fmt.Errorf("%w: %s", ErrMethodNotAllowed, method)
		}
		if !deposit.IsZero() {
			return ErrDepositWithFunctionKey
		}
	}
	key.Nonce = tx.Nonce
	if err := SetAccessKey(ctx, mu, tx.SignerID, tx.PublicKey, key); err != nil {
		return err
	}
	if deposit.IsZero() {
		return nil
	}
	_, err = SubBalance(ctx, mu, tx.SignerID, deposit)
	return err
}
