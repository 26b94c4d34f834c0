// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/linkdrop/state"
)

const batchSize = 10_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func newTestDB(t testing.TB) *Database {
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, _, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetPutDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	_, err := db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
	has, err = db.Has([]byte("a"))
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete([]byte("a")))
	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestBatchReplay(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	b := db.NewBatch()
	require.NoError(b.Put([]byte("k1"), []byte("v1")))
	require.NoError(b.Put([]byte("k2"), []byte("v2")))
	require.NoError(b.Delete([]byte("k1")))
	require.Equal(2+2+2+2+2, b.Size())

	mem := memdb.New()
	require.NoError(mem.Put([]byte("k1"), []byte("old")))
	require.NoError(b.Replay(mem))
	_, err := mem.Get([]byte("k1"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := mem.Get([]byte("k2"))
	require.NoError(err)
	require.Equal([]byte("v2"), v)

	require.NoError(b.Write())
	v, err = db.Get([]byte("k2"))
	require.NoError(err)
	require.Equal([]byte("v2"), v)

	b.Reset()
	require.Zero(b.Size())
}

func TestSimpleMutableOverPebble(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := newTestDB(t)

	mu := state.NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("key"), []byte("value")))
	_, err := db.Get([]byte("key"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(mu.Commit(ctx))
	v, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), v)
}

func TestCloseIdempotent(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)
	require.NotNil(registry)
	require.NoError(db.Close())
	require.NoError(db.Close())
}

func BenchmarkBatchInsertion(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(b.TempDir(), cfg)
			if err != nil {
				b.Fatal(err)
			}

			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j := 0; j < batchSize; j++ {
					if err := batch.Put(keys[j], randBytes()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
