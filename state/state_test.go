// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestSimpleMutableCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put([]byte("a"), []byte{1}))
	require.NoError(db.Put([]byte("b"), []byte{2}))

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("a"), []byte{3}))
	require.NoError(mu.Remove(ctx, []byte("b")))
	require.NoError(mu.Insert(ctx, []byte("c"), []byte{4}))
	require.Equal(3, mu.Len())

	// pending changes are visible through the view only
	v, err := mu.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{3}, v)
	_, err = mu.GetValue(ctx, []byte("b"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	require.NoError(mu.Commit(ctx))
	require.Zero(mu.Len())

	v, err = db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte{3}, v)
	has, err := db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)
	v, err = db.Get([]byte("c"))
	require.NoError(err)
	require.Equal([]byte{4}, v)
}

func TestSimpleMutableDiscard(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	require.NoError(db.Put([]byte("a"), []byte{1}))

	mu := NewSimpleMutable(db)
	require.NoError(mu.Remove(ctx, []byte("a")))
	require.NoError(mu.Insert(ctx, []byte("b"), []byte{2}))
	mu.Discard()

	v, err := mu.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)
	_, err = mu.GetValue(ctx, []byte("b"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(mu.Commit(ctx))
	has, err := db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)
}

func TestPrefixedMutable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	storage := MutableStorage{}
	a := NewPrefixedMutable([]byte{0}, storage)
	b := NewPrefixedMutable([]byte{1}, storage)

	require.NoError(a.Insert(ctx, []byte("k"), []byte("a")))
	require.NoError(b.Insert(ctx, []byte("k"), []byte("b")))
	require.Len(storage, 2)
	require.Equal([]byte("a"), storage[string([]byte{0, 'k'})])

	v, err := b.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte("b"), v)

	require.NoError(a.Remove(ctx, []byte("k")))
	_, err = a.GetValue(ctx, []byte("k"))
	require.ErrorIs(err, database.ErrNotFound)
	_, err = b.GetValue(ctx, []byte("k"))
	require.NoError(err)
}
