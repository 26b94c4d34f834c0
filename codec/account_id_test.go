// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountIDVerify(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"alice", true},
		{"alice.testnet", true},
		{"a-b_c.d", true},
		{"0x1", true},
		{"a", false},
		{"Alice", false},
		{"alice..testnet", false},
		{".alice", false},
		{"alice-", false},
		{"a--b", false},
		{"alice testnet", false},
		{strings.Repeat("a", MaxAccountIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := AccountID(tt.id).Verify()
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidAccountID)
			}
		})
	}
}

func TestAccountIDParent(t *testing.T) {
	require := require.New(t)

	parent, ok := AccountID("alice.testnet").Parent()
	require.True(ok)
	require.Equal(AccountID("testnet"), parent)

	parent, ok = AccountID("a.b.testnet").Parent()
	require.True(ok)
	require.Equal(AccountID("b.testnet"), parent)

	require.True(AccountID("testnet").IsTopLevel())
}

func TestAccountIDJSON(t *testing.T) {
	require := require.New(t)

	var args struct {
		ID AccountID `json:"id"`
	}
	require.NoError(json.Unmarshal([]byte(`{"id":"bob.testnet"}`), &args))
	require.Equal(AccountID("bob.testnet"), args.ID)

	err := json.Unmarshal([]byte(`{"id":"Bob"}`), &args)
	require.ErrorIs(err, ErrInvalidAccountID)
}
