// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/hdevalence/ed25519consensus"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// We use the ZIP-215 specification for ed25519 signature
// verification (https://zips.z.cash/zip-0215) because it provides
// an explicit validity criteria for signatures and is broadly
// compatible with signatures produced by almost all ed25519
// implementations.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	// PrivateKeySeedLen is defined because ed25519.PrivateKey
	// is formatted as privateKey = seed|publicKey. We use this const
	// to extract the publicKey below.
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	// CurvePrefix tags the text form of keys, e.g. "ed25519:<base58>".
	CurvePrefix = "ed25519:"
)

var (
	EmptyPublicKey  = [ed25519.PublicKeySize]byte{}
	EmptyPrivateKey = [ed25519.PrivateKeySize]byte{}
	EmptySignature  = [ed25519.SignatureSize]byte{}
)

// GeneratePrivateKey returns a Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey returns a PublicKey associated with the Ed25519 PrivateKey p.
// The PublicKey is the last 32 bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	sig := ed25519.Sign(pk[:], msg)
	return Signature(sig)
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

// String returns the "ed25519:<base58>" form of p.
func (p PublicKey) String() string {
	return CurvePrefix + base58.Encode(p[:])
}

func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PublicKey) UnmarshalText(text []byte) error {
	pk, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

// ParsePublicKey parses the output of PublicKey.String. A missing curve
// prefix is accepted and treated as ed25519.
func ParsePublicKey(s string) (PublicKey, error) {
	b, err := decodeKey(s)
	if err != nil {
		return EmptyPublicKey, err
	}
	if len(b) != PublicKeyLen {
		return EmptyPublicKey, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidPublicKey, PublicKeyLen, len(b))
	}
	return PublicKey(b), nil
}

func (p PrivateKey) String() string {
	return CurvePrefix + base58.Encode(p[:])
}

func (p PrivateKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PrivateKey) UnmarshalText(text []byte) error {
	pk, err := ParsePrivateKey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

// ParsePrivateKey parses the output of PrivateKey.String.
func ParsePrivateKey(s string) (PrivateKey, error) {
	b, err := decodeKey(s)
	if err != nil {
		return EmptyPrivateKey, err
	}
	if len(b) != PrivateKeyLen {
		return EmptyPrivateKey, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidPrivateKey, PrivateKeyLen, len(b))
	}
	return PrivateKey(b), nil
}

func (s Signature) String() string {
	return CurvePrefix + base58.Encode(s[:])
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	b, err := decodeKey(string(text))
	if err != nil {
		return err
	}
	if len(b) != SignatureLen {
		return fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidSignature, SignatureLen, len(b))
	}
	*s = Signature(b)
	return nil
}

func decodeKey(s string) ([]byte, error) {
	if curve, data, ok := strings.Cut(s, ":"); ok {
		if curve+":" != CurvePrefix {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCurve, curve)
		}
		s = data
	}
	return base58.Decode(s), nil
}
