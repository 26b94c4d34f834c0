// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// Parts are lowercase alphanumerics joined by single '-' or '_'
// separators. Parts are joined by '.'.
var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// AccountID names an account in the host namespace. The parent of
// "alice.testnet" is "testnet" and only "testnet" may create it.
type AccountID string

// ParseAccountID returns [s] as an AccountID if it is well formed.
func ParseAccountID(s string) (AccountID, error) {
	id := AccountID(s)
	if err := id.Verify(); err != nil {
		return "", err
	}
	return id, nil
}

// Verify returns an error if [a] is not a well formed account id.
func (a AccountID) Verify() error {
	if len(a) < MinAccountIDLen || len(a) > MaxAccountIDLen {
		return fmt.Errorf("%w: %q has length %d", ErrInvalidAccountID, string(a), len(a))
	}
	if !accountIDPattern.MatchString(string(a)) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountID, string(a))
	}
	return nil
}

// Parent returns the account allowed to create [a]. Top-level accounts
// have no parent.
func (a AccountID) Parent() (AccountID, bool) {
	i := strings.IndexByte(string(a), '.')
	if i < 0 {
		return "", false
	}
	return a[i+1:], true
}

// IsTopLevel returns true if [a] has no parent.
func (a AccountID) IsTopLevel() bool {
	_, ok := a.Parent()
	return !ok
}

func (a AccountID) String() string {
	return string(a)
}

// UnmarshalText rejects malformed ids so that they never reach a
// contract entry point.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
