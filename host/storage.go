// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/holiman/uint256"
	"github.com/near/borsh-go"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

// State
// 0x0/ (account)
//   -> [len(account)][account] => account record
// 0x1/ (access key)
//   -> [len(account)][account][public key] => access key record
// 0x2/ (code)
//   -> [code hash] => code
// 0x3/ (contract state)
//   -> [len(account)][account][key] => value

const (
	accountPrefix byte = iota
	accessKeyPrefix
	codePrefix
	contractStatePrefix
)

// accountKey encodes [account] with a length prefix so that no
// account's key space is a prefix of another's.
func accountKey(prefix byte, account codec.AccountID, extra int) []byte {
	k := make([]byte, 0, 2+len(account)+extra)
	k = append(k, prefix, byte(len(account)))
	return append(k, account...)
}

func AccountKey(account codec.AccountID) []byte {
	return accountKey(accountPrefix, account, 0)
}

func AccessKeyKey(account codec.AccountID, pk ed25519.PublicKey) []byte {
	return append(accountKey(accessKeyPrefix, account, ed25519.PublicKeyLen), pk[:]...)
}

func CodeKey(hash ids.ID) []byte {
	k := make([]byte, 0, 1+ids.IDLen)
	k = append(k, codePrefix)
	return append(k, hash[:]...)
}

func ContractStatePrefix(account codec.AccountID) []byte {
	return accountKey(contractStatePrefix, account, 0)
}

// ContractState is the storage space private to the contract at [account].
func ContractState(mu state.Mutable, account codec.AccountID) state.Mutable {
	return state.NewPrefixedMutable(ContractStatePrefix(account), mu)
}

type accountRecord struct {
	Balance  big.Int
	CodeHash [ids.IDLen]byte
}

type accessKeyRecord struct {
	Nonce       uint64
	FullAccess  bool
	Allowance   big.Int
	ReceiverID  string
	MethodNames []string
}

func HashCode(code []byte) ids.ID {
	return sha256.Sum256(code)
}

func GetAccount(ctx context.Context, im state.Immutable, account codec.AccountID) (*Account, error) {
	v, err := im.GetValue(ctx, AccountKey(account))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err != nil {
		return nil, err
	}
	var r accountRecord
	if err := borsh.Deserialize(&r, v); err != nil {
		return nil, err
	}
	bal, err := codec.FromBig(&r.Balance)
	if err != nil {
		return nil, err
	}
	return &Account{Balance: bal, CodeHash: r.CodeHash}, nil
}

func AccountExists(ctx context.Context, im state.Immutable, account codec.AccountID) (bool, error) {
	_, err := im.GetValue(ctx, AccountKey(account))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func SetAccount(ctx context.Context, mu state.Mutable, account codec.AccountID, a *Account) error {
	if err := codec.VerifyU128(a.Balance); err != nil {
		return err
	}
	v, err := borsh.Serialize(accountRecord{
		Balance:  codec.ToBig(a.Balance),
		CodeHash: a.CodeHash,
	})
	if err != nil {
		return err
	}
	return mu.Insert(ctx, AccountKey(account), v)
}

func AddBalance(
	ctx context.Context,
	mu state.Mutable,
	account codec.AccountID,
	amount *uint256.Int,
) (*uint256.Int, error) {
	a, err := GetAccount(ctx, mu, account)
	if err != nil {
		return nil, err
	}
	nbal, err := codec.AddU128(a.Balance, amount)
	if err != nil {
		return nil, fmt.Errorf("could not add balance to %s: %w", account, err)
	}
	a.Balance = nbal
	return nbal, SetAccount(ctx, mu, account, a)
}

func SubBalance(
	ctx context.Context,
	mu state.Mutable,
	account codec.AccountID,
	amount *uint256.Int,
) (*uint256.Int, error) {
	a, err := GetAccount(ctx, mu, account)
	if err != nil {
		return nil, err
	}
	nbal, err := codec.SubU128(a.Balance, amount)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: could not subtract balance (bal=%s, account=%s, amount=%s)",
			ErrNotEnoughBalance,
			a.Balance.Dec(),
			account,
			amount.Dec(),
		)
	}
	a.Balance = nbal
	return nbal, SetAccount(ctx, mu, account, a)
}

func GetAccessKey(
	ctx context.Context,
	im state.Immutable,
	account codec.AccountID,
	pk ed25519.PublicKey,
) (*AccessKey, error) {
	v, err := im.GetValue(ctx, AccessKeyKey(account, pk))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s on %s", ErrAccessKeyNotFound, pk, account)
	}
	if err != nil {
		return nil, err
	}
	var r accessKeyRecord
	if err := borsh.Deserialize(&r, v); err != nil {
		return nil, err
	}
	key := &AccessKey{Nonce: r.Nonce}
	if r.FullAccess {
		return key, nil
	}
	allowance, err := codec.FromBig(&r.Allowance)
	if err != nil {
		return nil, err
	}
	key.Permission.FunctionCall = &FunctionCallPermission{
		Allowance:   allowance,
		ReceiverID:  codec.AccountID(r.ReceiverID),
		MethodNames: r.MethodNames,
	}
	return key, nil
}

func SetAccessKey(
	ctx context.Context,
	mu state.Mutable,
	account codec.AccountID,
	pk ed25519.PublicKey,
	key *AccessKey,
) error {
	r := accessKeyRecord{Nonce: key.Nonce, FullAccess: key.Permission.IsFullAccess()}
	if fc := key.Permission.FunctionCall; fc != nil {
		r.Allowance = codec.ToBig(fc.Allowance)
		r.ReceiverID = fc.ReceiverID.String()
		r.MethodNames = fc.MethodNames
	}
	v, err := borsh.Serialize(r)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, AccessKeyKey(account, pk), v)
}

func DeleteAccessKey(
	ctx context.Context,
	mu state.Mutable,
	account codec.AccountID,
	pk ed25519.PublicKey,
) error {
	k := AccessKeyKey(account, pk)
	if _, err := mu.GetValue(ctx, k); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %s on %s", ErrAccessKeyNotFound, pk, account)
		}
		return err
	}
	return mu.Remove(ctx, k)
}

func GetCode(ctx context.Context, im state.Immutable, hash ids.ID) ([]byte, error) {
	v, err := im.GetValue(ctx, CodeKey(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: code %s", ErrContractNotFound, hash)
	}
	return v, err
}

func SetCode(ctx context.Context, mu state.Mutable, code []byte) (ids.ID, error) {
	hash := HashCode(code)
	return hash, mu.Insert(ctx, CodeKey(hash), code)
}
