// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import "errors"

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountExists           = errors.New("account already exists")
	ErrCreateAccountNotAllowed = errors.New("account creation not allowed")
	ErrActorNoPermission       = errors.New("actor has no permission")
	ErrAccessKeyNotFound       = errors.New("access key not found")
	ErrAccessKeyExists         = errors.New("access key already exists")
	ErrNotEnoughBalance        = errors.New("not enough balance")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrInvalidNonce            = errors.New("invalid nonce")
	ErrMethodNotAllowed        = errors.New("method not allowed by access key")
	ErrReceiverMismatch        = errors.New("receiver does not match access key")
	ErrDepositWithFunctionKey  = errors.New("function call access key cannot attach deposit")
	ErrFunctionKeyActions      = errors.New("function call access key may only sign a single function call")
	ErrEmptyActions            = errors.New("action batch is empty")
	ErrInvalidAction           = errors.New("action must set exactly one variant")
	ErrContractNotFound        = errors.New("contract not found")
	ErrMethodNotFound          = errors.New("method not found")
	ErrOutOfGas                = errors.New("out of gas")
	ErrGasLimitExceeded        = errors.New("gas limit exceeded")
	ErrContractPanic           = errors.New("contract panicked")
	ErrReadOnly                = errors.New("operation not allowed in view call")
	ErrInvalidPromise          = errors.New("invalid promise id")
	ErrReceiptLimit            = errors.New("receipt limit exceeded")
)
