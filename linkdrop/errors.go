// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import "errors"

// KeyMissing is the error value returned by get_key_information.
const KeyMissing = "Key is missing"

var (
	ErrInvalidConfiguration = errors.New("cannot create account with no options, specify contract bytes, full access keys or limited access keys")
	ErrMalformedCallback    = errors.New("contract expected a single result on the callback")
	ErrUnauthorizedCallback = errors.New("callback can only be called from the contract")
	ErrUnauthorizedClaim    = errors.New("create account and claim can only come from the contract account")
	ErrKeyNotFound          = errors.New("key is missing")
	ErrInsufficientDeposit  = errors.New("attached deposit must be greater than the access key allowance")
	ErrNotInitialized       = errors.New("contract is not initialized")
	ErrAlreadyInitialized   = errors.New("contract is already initialized")
	ErrUnknownMethod        = errors.New("unknown method")
	ErrInvalidArguments     = errors.New("invalid arguments")
)
