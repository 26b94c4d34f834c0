// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/near/borsh-go"

	"github.com/ava-labs/linkdrop/consts"
)

// MaxU128 is the largest amount of funds any balance may hold.
var MaxU128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// Amounts are carried as *uint256.Int bounded to 128 bits. They are
// never converted to floating point.

// ParseU128 parses a base-10 amount.
func ParseU128(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, err
	}
	if err := VerifyU128(v); err != nil {
		return nil, err
	}
	return v, nil
}

// MustParseU128 is ParseU128 for constants.
func MustParseU128(s string) *uint256.Int {
	v, err := ParseU128(s)
	if err != nil {
		panic(err)
	}
	return v
}

// VerifyU128 returns an error if [v] is nil or does not fit in 128 bits.
func VerifyU128(v *uint256.Int) error {
	if v == nil {
		return ErrMissingU128
	}
	if v.Gt(MaxU128) {
		return fmt.Errorf("%w: %s", ErrU128Overflow, v.Dec())
	}
	return nil
}

// AddU128 returns a + b without modifying either argument.
func AddU128(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(MaxU128) {
		return nil, fmt.Errorf("%w: %s + %s", ErrU128Overflow, a.Dec(), b.Dec())
	}
	return sum, nil
}

// SubU128 returns a - b without modifying either argument.
func SubU128(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s", ErrU128Underflow, a.Dec(), b.Dec())
	}
	return diff, nil
}

type u128Record struct {
	Value big.Int
}

// MarshalU128 returns the 16 byte little-endian borsh encoding of [v].
func MarshalU128(v *uint256.Int) ([]byte, error) {
	if err := VerifyU128(v); err != nil {
		return nil, err
	}
	return borsh.Serialize(u128Record{Value: *v.ToBig()})
}

// UnmarshalU128 parses the output of MarshalU128.
func UnmarshalU128(b []byte) (*uint256.Int, error) {
	if len(b) != consts.U128Len {
		return nil, fmt.Errorf("%w: u128 has %d bytes", ErrInvalidSize, len(b))
	}
	var r u128Record
	if err := borsh.Deserialize(&r, b); err != nil {
		return nil, err
	}
	v, overflow := uint256.FromBig(&r.Value)
	if overflow {
		return nil, ErrU128Overflow
	}
	return v, nil
}

// ToBig converts [v] for embedding in borsh records.
func ToBig(v *uint256.Int) big.Int {
	if v == nil {
		return big.Int{}
	}
	return *v.ToBig()
}

// FromBig converts a borsh u128 field back into an amount.
func FromBig(b *big.Int) (*uint256.Int, error) {
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, ErrU128Overflow
	}
	return v, VerifyU128(v)
}
