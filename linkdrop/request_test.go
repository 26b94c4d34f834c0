// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linkdrop

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/linkdrop/codec"
	"github.com/ava-labs/linkdrop/crypto/ed25519"
)

func TestBuildAccountRequestOrder(t *testing.T) {
	require := require.New(t)
	full1, full2, limited := newTestKey(t), newTestKey(t), newTestKey(t)

	opts := &CreateAccountOptions{
		FullAccessKeys: []ed25519.PublicKey{full1, full2},
		LimitedAccessKeys: []LimitedAccessKey{{
			PublicKey:   limited,
			Allowance:   uint256.NewInt(10),
			ReceiverID:  "app.testnet",
			MethodNames: "a,b",
		}},
		ContractBytes: ContractBytes{1, 2, 3},
	}
	batch, err := BuildAccountRequest("bob", uint256.NewInt(100), opts)
	require.NoError(err)
	require.Equal(codec.AccountID("bob"), batch.Receiver)

	actions := make([]string, len(batch.Actions))
	for i := range batch.Actions {
		actions[i] = batch.Actions[i].String()
	}
	require.Equal([]string{
		"CreateAccount",
		"Transfer(100)",
		"AddKey(" + full1.String() + ")",
		"AddKey(" + full2.String() + ")",
		"AddKey(" + limited.String() + ")",
		"DeployContract",
	}, actions)

	perm := batch.Actions[4].AddKey.Permission.FunctionCall
	require.NotNil(perm)
	require.Equal([]string{"a", "b"}, perm.MethodNames)
	require.Equal(codec.AccountID("app.testnet"), perm.ReceiverID)
	require.True(batch.Actions[2].AddKey.Permission.IsFullAccess())
	require.Equal([]byte{1, 2, 3}, []byte(batch.Actions[5].DeployContract.Code))

	deposit, err := batch.Deposit()
	require.NoError(err)
	require.Equal(uint64(100), deposit.Uint64())
	require.NoError(batch.Verify())
}

func TestBuildAccountRequestOptions(t *testing.T) {
	k := newTestKey(t)

	tests := []struct {
		name    string
		opts    *CreateAccountOptions
		actions int
		err     error
	}{
		{
			name: "nil options",
			opts: nil,
			err:  ErrInvalidConfiguration,
		},
		{
			name: "all absent",
			opts: &CreateAccountOptions{},
			err:  ErrInvalidConfiguration,
		},
		{
			name:    "empty full key list is present",
			opts:    &CreateAccountOptions{FullAccessKeys: []ed25519.PublicKey{}},
			actions: 2,
		},
		{
			name:    "empty contract is present",
			opts:    &CreateAccountOptions{ContractBytes: ContractBytes{}},
			actions: 3,
		},
		{
			name:    "single full key",
			opts:    &CreateAccountOptions{FullAccessKeys: []ed25519.PublicKey{k}},
			actions: 3,
		},
		{
			name: "limited key without allowance",
			opts: &CreateAccountOptions{LimitedAccessKeys: []LimitedAccessKey{{
				PublicKey:  k,
				ReceiverID: "app.testnet",
			}}},
			err: ErrInvalidArguments,
		},
		{
			name: "limited key with bad receiver",
			opts: &CreateAccountOptions{LimitedAccessKeys: []LimitedAccessKey{{
				PublicKey:  k,
				Allowance:  uint256.NewInt(1),
				ReceiverID: "Bad..Receiver",
			}}},
			err: ErrInvalidArguments,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := BuildAccountRequest("bob", uint256.NewInt(1), tt.opts)
			require.ErrorIs(t, err, tt.err)
			if tt.err != nil {
				return
			}
			require.Len(t, batch.Actions, tt.actions)
		})
	}
}

func TestBuildAccountRequestInvalidTarget(t *testing.T) {
	opts := &CreateAccountOptions{FullAccessKeys: []ed25519.PublicKey{newTestKey(t)}}
	_, err := BuildAccountRequest("A", uint256.NewInt(1), opts)
	require.ErrorIs(t, err, codec.ErrInvalidAccountID)
}

func TestCreateAccountOptionsJSON(t *testing.T) {
	require := require.New(t)
	k := newTestKey(t)

	raw := `{
		"full_access_keys": null,
		"limited_access_keys": [{
			"public_key": "` + k.String() + `",
			"allowance": "1000",
			"receiver_id": "app.testnet",
			"method_names": "claim"
		}],
		"contract_bytes": [0, 97, 255]
	}`
	var opts CreateAccountOptions
	require.NoError(json.Unmarshal([]byte(raw), &opts))
	require.Nil(opts.FullAccessKeys)
	require.Len(opts.LimitedAccessKeys, 1)
	require.Equal(k, opts.LimitedAccessKeys[0].PublicKey)
	require.Equal(uint64(1000), opts.LimitedAccessKeys[0].Allowance.Uint64())
	require.Equal([]string{"claim"}, opts.LimitedAccessKeys[0].Methods())
	require.Equal(ContractBytes{0, 97, 255}, opts.ContractBytes)

	b, err := json.Marshal(ContractBytes{0, 97, 255})
	require.NoError(err)
	require.Equal("[0,97,255]", string(b))

	require.ErrorIs(json.Unmarshal([]byte(`{"contract_bytes":[256]}`), &CreateAccountOptions{}), ErrInvalidArguments)

	var absent CreateAccountOptions
	require.NoError(json.Unmarshal([]byte(`{}`), &absent))
	require.ErrorIs(absent.Verify(), ErrInvalidConfiguration)
}

func TestLimitedAccessKeyMethods(t *testing.T) {
	require := require.New(t)

	require.Nil((&LimitedAccessKey{}).Methods())
	require.Equal([]string{"a", "b", "c"}, (&LimitedAccessKey{MethodNames: "a,b,c"}).Methods())
}
