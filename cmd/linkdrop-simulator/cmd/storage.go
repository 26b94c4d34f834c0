// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/linkdrop/crypto/ed25519"
	"github.com/ava-labs/linkdrop/state"
)

// Named keys share the database with the host. The host only uses the
// low prefixes, so the simulator keeps its keys under 0xff.
//
// 0xff/ (named key)
//   -> [name] => private key
const keyPrefix byte = 0xff

func NamedKeyKey(name string) (k []byte) {
	k = make([]byte, 0, 1+len(name))
	k = append(k, keyPrefix)
	return append(k, name...)
}

func GetPrivateKey(ctx context.Context, db state.Immutable, name string) (ed25519.PrivateKey, bool, error) {
	v, err := db.GetValue(ctx, NamedKeyKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return ed25519.EmptyPrivateKey, false, nil
	}
	if err != nil {
		return ed25519.EmptyPrivateKey, false, err
	}
	if len(v) != ed25519.PrivateKeyLen {
		return ed25519.EmptyPrivateKey, false, fmt.Errorf("%w: corrupt key %q", ErrNamedKeyNotFound, name)
	}
	return ed25519.PrivateKey(v), true, nil
}

func GetPublicKey(ctx context.Context, db state.Immutable, name string) (ed25519.PublicKey, bool, error) {
	priv, ok, err := GetPrivateKey(ctx, db, name)
	if !ok || err != nil {
		return ed25519.EmptyPublicKey, ok, err
	}
	return priv.PublicKey(), true, nil
}

func SetKey(ctx context.Context, mu state.Mutable, priv ed25519.PrivateKey, name string) error {
	return mu.Insert(ctx, NamedKeyKey(name), priv[:])
}

// keyCreateFunc generates a key, stores it under [name] and commits.
func keyCreateFunc(ctx context.Context, db state.Database, name string) (ed25519.PublicKey, error) {
	if len(name) == 0 {
		return ed25519.EmptyPublicKey, fmt.Errorf("%w: empty key name", ErrInvalidParamType)
	}
	mu := state.NewSimpleMutable(db)
	_, ok, err := GetPrivateKey(ctx, mu, name)
	if err != nil {
		return ed25519.EmptyPublicKey, err
	}
	if ok {
		return ed25519.EmptyPublicKey, fmt.Errorf("%w: %s", ErrDuplicateKeyName, name)
	}
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return ed25519.EmptyPublicKey, err
	}
	if err := SetKey(ctx, mu, priv, name); err != nil {
		return ed25519.EmptyPublicKey, err
	}
	if err := mu.Commit(ctx); err != nil {
		return ed25519.EmptyPublicKey, err
	}
	return priv.PublicKey(), nil
}
