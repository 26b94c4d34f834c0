// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/linkdrop/host"
	"github.com/ava-labs/linkdrop/state"
)

func TestKeyCreate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()

	_, ok, err := GetPublicKey(ctx, state.NewSimpleMutable(db), "alice")
	require.NoError(err)
	require.False(ok)

	pk, err := keyCreateFunc(ctx, db, "alice")
	require.NoError(err)
	stored, ok, err := GetPublicKey(ctx, state.NewSimpleMutable(db), "alice")
	require.NoError(err)
	require.True(ok)
	require.Equal(pk, stored)

	_, err = keyCreateFunc(ctx, db, "alice")
	require.ErrorIs(err, ErrDuplicateKeyName)
	_, err = keyCreateFunc(ctx, db, "")
	require.ErrorIs(err, ErrInvalidParamType)

	other, err := keyCreateFunc(ctx, db, "bob")
	require.NoError(err)
	require.NotEqual(pk, other)
}

func TestNamedKeysAvoidHostState(t *testing.T) {
	require := require.New(t)

	for _, k := range [][]byte{
		host.AccountKey("alice"),
		host.AccessKeyKey("alice", [32]byte{}),
		host.ContractStatePrefix("alice"),
	} {
		require.NotEqual(keyPrefix, k[0])
	}
	require.Equal(append([]byte{keyPrefix}, "alice"...), NamedKeyKey("alice"))
}
