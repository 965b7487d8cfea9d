package ethereum

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

// AddressLength is the size of an Ethereum address in bytes
const AddressLength = common.AddressLength

// EthAddress is a raw 20 byte Ethereum address. Its textual form is
// lowercase hex without a 0x prefix.
type EthAddress [AddressLength]byte

// ParseHex parses a hex encoded address, with or without the 0x prefix.
// No checksum verification is done.
func ParseHex(s string) (EthAddress, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return EthAddress{}, apperrors.InvalidEncodingError(apperrors.StageAddress, "", err)
	}
	return FromBytes(data)
}

// MustParseHex is like ParseHex but panics on failure. Meant for constants and tests.
func MustParseHex(s string) EthAddress {
	addr, err := ParseHex(s)
	if err != nil {
		panic("address should be a valid 20 byte hex string: " + err.Error())
	}
	return addr
}

// FromBytes copies b into an address. b must be exactly 20 bytes long.
func FromBytes(b []byte) (EthAddress, error) {
	var addr EthAddress
	if len(b) != AddressLength {
		return addr, apperrors.InvalidLengthError(apperrors.StageAddress, "", len(b), AddressLength)
	}
	copy(addr[:], b)
	return addr, nil
}

// FromCommon converts a go-ethereum address.
func FromCommon(a common.Address) EthAddress {
	return EthAddress(a)
}

// Common converts to a go-ethereum address.
func (a EthAddress) Common() common.Address {
	return common.Address(a)
}

// Hex returns the 40 character lowercase hex form, without prefix.
func (a EthAddress) Hex() string {
	return hex.EncodeToString(a[:])
}

// Checksum returns the EIP-55 mixed case form with 0x prefix. Display only.
func (a EthAddress) Checksum() string {
	return a.Common().Hex()
}

func (a EthAddress) String() string {
	return a.Hex()
}

// Bytes returns a copy of the raw address bytes.
func (a EthAddress) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether all bytes are zero.
func (a EthAddress) IsZero() bool {
	return a == EthAddress{}
}

func (a EthAddress) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *EthAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a EthAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

func (a *EthAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperrors.InvalidEncodingError(apperrors.StageAddress, "", err)
	}
	return a.UnmarshalText([]byte(s))
}
