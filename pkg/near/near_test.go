package near

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

func TestParseAccountID(t *testing.T) {
	valid := []string{"alice.near", "token.near", "a1", "aurora", "sub_account-1.bridge.near", "0123456789012345678901234567890123456789012345678901234567890123"}
	for _, s := range valid {
		id, err := ParseAccountID(s)
		require.NoError(t, err, s)
		assert.Equal(t, AccountID(s), id)
	}

	invalid := []string{"", "a", "Alice.near", "alice..near", ".alice", "alice.", "alice-", "al ice", "alice@near",
		"01234567890123456789012345678901234567890123456789012345678901234"}
	for _, s := range invalid {
		_, err := ParseAccountID(s)
		assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding, s)
	}
}

func TestValidator_StructTag(t *testing.T) {
	type input struct {
		Token string `validate:"near_account"`
	}
	assert.NoError(t, Validator().Struct(input{Token: "token.near"}))
	assert.Error(t, Validator().Struct(input{Token: "TOKEN"}))
}

func TestU128_JSON(t *testing.T) {
	u := NewU128(300)
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `"300"`, string(data))

	var decoded U128
	require.NoError(t, json.Unmarshal([]byte(`"340282366920938463463374607431768211455"`), &decoded))
	assert.Equal(t, "340282366920938463463374607431768211455", decoded.String())

	assert.ErrorIs(t, json.Unmarshal([]byte(`300`), &decoded), apperrors.ErrInvalidEncoding)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"340282366920938463463374607431768211456"`), &decoded), apperrors.ErrInvalidEncoding)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"-1"`), &decoded), apperrors.ErrInvalidEncoding)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"1e3"`), &decoded), apperrors.ErrInvalidEncoding)
}

func TestU128_Bytes(t *testing.T) {
	u := MustParseU128("18446744073709551617") // 2^64 + 1
	buf := make([]byte, U128Size)
	u.PutBytes(buf)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}, buf)

	back, err := U128FromBytes(buf)
	require.NoError(t, err)
	assert.True(t, u.Equal(back))

	_, err = U128FromBytes(buf[:15])
	assert.ErrorIs(t, err, apperrors.ErrInvalidLength)
}

func TestU128_Big(t *testing.T) {
	b, _ := new(big.Int).SetString("1000000000000000000000", 10)
	u, err := U128FromBig(b)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Cmp(u.Big()))
	assert.Equal(t, "1000000000000000000000", b.String(), "argument must not be modified")

	_, err = U128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.Error(t, err)
	_, err = U128FromBig(nil)
	assert.Error(t, err)
}

func TestU128_Decimal(t *testing.T) {
	u := MustParseU128("1500000000000000000")
	assert.Equal(t, "1.5", u.Decimal(18).String())
	assert.Equal(t, "1500000000000000000", u.Decimal(0).String())
	assert.True(t, NewU128(0).IsZero())
}

func TestU128_Text(t *testing.T) {
	var u U128
	require.NoError(t, u.UnmarshalText([]byte("42")))
	text, err := u.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "42", string(text))
}
