// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "context"

var _ Mutable = (*PrefixedMutable)(nil)

// PrefixedMutable scopes every key of [inner] under [prefix]. [prefix]
// must be unique to keep the state space isolated from others in
// [inner].
type PrefixedMutable struct {
	inner  Mutable
	prefix []byte
}

func NewPrefixedMutable(prefix []byte, inner Mutable) *PrefixedMutable {
	return &PrefixedMutable{inner: inner, prefix: prefix}
}

func (s *PrefixedMutable) prefixKey(key []byte) (k []byte) {
	k = make([]byte, len(s.prefix)+len(key))
	copy(k, s.prefix)
	copy(k[len(s.prefix):], key)
	return
}

func (s *PrefixedMutable) GetValue(ctx context.Context, key []byte) (value []byte, err error) {
	return s.inner.GetValue(ctx, s.prefixKey(key))
}

func (s *PrefixedMutable) Insert(ctx context.Context, key []byte, value []byte) error {
	return s.inner.Insert(ctx, s.prefixKey(key), value)
}

func (s *PrefixedMutable) Remove(ctx context.Context, key []byte) error {
	return s.inner.Remove(ctx, s.prefixKey(key))
}
