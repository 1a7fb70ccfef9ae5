package kvac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	coin := mintCoin(t, key, 21, nil)

	data, err := NewToken(coin, "mint.example.com").Serialize()
	require.Nil(err)

	token, err := DeserializeToken(data)
	require.Nil(err)
	assert.Equal(uint8(TokenVersion), token.Version)
	assert.Equal("mint.example.com", token.MintID)

	restored, err := token.Coin()
	require.Nil(err)
	assert.True(coin.Amount.Amount.Equals(restored.Amount.Amount))
	assert.True(coin.Amount.Blind.Equals(restored.Amount.Blind))
	assert.True(coin.Mac.T.Equals(restored.Mac.T))
	assert.True(coin.Mac.V.Equals(restored.Mac.V))
	assert.Nil(restored.Script)

	// The restored coin still spends.
	rc, ra, err := RandomizeCoin(restored, false)
	require.Nil(err)
	proof, err := proveMAC(key.Public(), restored, rc, ra)
	require.Nil(err)
	assert.True(verifyMAC(key, key.Public(), rc, proof))
}

func TestTokenWithScript(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	coin := mintCoin(t, key, 3, []byte("timelock 800000"))

	data, err := NewToken(coin, "mint").Serialize()
	require.Nil(err)
	token, err := DeserializeToken(data)
	require.Nil(err)

	restored, err := token.Coin()
	require.Nil(err)
	require.NotNil(restored.Script)
	assert.True(coin.Script.ScriptHash.Equals(restored.Script.ScriptHash))
	assert.True(coin.Script.Blind.Equals(restored.Script.Blind))
}

func TestTokenInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := DeserializeToken(nil)
	assert.ErrorIs(err, ErrEmptyInput)

	_, err = DeserializeToken([]byte("not cbor at all"))
	assert.ErrorIs(err, ErrMalformedEncoding)

	token := &Token{Version: 99}
	_, err = token.Coin()
	assert.ErrorIs(err, ErrMalformedEncoding)

	// Truncated scalar fields are rejected on reconstruction.
	key := NewMintPrivateKey()
	good := NewToken(mintCoin(t, key, 1, nil), "mint")
	good.Amount = good.Amount[:16]
	_, err = good.Coin()
	assert.ErrorIs(err, ErrMalformedEncoding)
}
