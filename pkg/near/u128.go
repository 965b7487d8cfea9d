package near

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

// U128Size is the width of a U128 on the wire.
const U128Size = 16

// U128 is an unsigned 128-bit integer. In JSON it is a quoted decimal
// string so indexers never lose precision.
type U128 struct {
	v uint128.Uint128
}

// NewU128 creates a U128 from a uint64.
func NewU128(v uint64) U128 {
	return U128{v: uint128.From64(v)}
}

// U128FromBig converts b, failing if it is negative or wider than 128 bits.
func U128FromBig(b *big.Int) (U128, error) {
	if b == nil || b.Sign() < 0 || b.BitLen() > 128 {
		return U128{}, apperrors.InvalidEncodingError(apperrors.StageAmount, "", fmt.Errorf("value %v out of u128 range", b))
	}
	return U128{v: uint128.FromBig(new(big.Int).Set(b))}, nil
}

// ParseU128 parses a base 10 string.
func ParseU128(s string) (U128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U128{}, apperrors.InvalidEncodingError(apperrors.StageAmount, "", fmt.Errorf("invalid decimal %q", s))
	}
	return U128FromBig(b)
}

// MustParseU128 is like ParseU128 but panics on failure.
func MustParseU128(s string) U128 {
	u, err := ParseU128(s)
	if err != nil {
		panic(err)
	}
	return u
}

// U128FromBytes reads 16 little-endian bytes.
func U128FromBytes(b []byte) (U128, error) {
	if len(b) != U128Size {
		return U128{}, apperrors.InvalidLengthError(apperrors.StageAmount, "", len(b), U128Size)
	}
	return U128{v: uint128.FromBytes(b)}, nil
}

// PutBytes writes u as 16 little-endian bytes into b.
func (u U128) PutBytes(b []byte) {
	u.v.PutBytes(b)
}

// Big returns u as a big.Int.
func (u U128) Big() *big.Int {
	return u.v.Big()
}

func (u U128) Equal(other U128) bool {
	return u.v.Equals(other.v)
}

func (u U128) IsZero() bool {
	return u.v.IsZero()
}

func (u U128) String() string {
	return u.v.String()
}

// Decimal scales u down by 10^decimals for display.
func (u U128) Decimal(decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(u.Big(), -decimals)
}

func (u U128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *U128) UnmarshalText(text []byte) error {
	parsed, err := ParseU128(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts only the quoted decimal form.
func (u *U128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperrors.InvalidEncodingError(apperrors.StageAmount, "", fmt.Errorf("u128 must be a JSON string: %w", err))
	}
	return u.UnmarshalText([]byte(s))
}
