package kvac

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZKPRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	attr := NewAmountAttribute(0)
	ma, proof, err := ProveBootstrap(attr)
	require.Nil(err)

	decoded, err := ZKPFromBytes(proof.ToBytes())
	require.Nil(err)
	assert.True(VerifyBootstrap(ma, decoded))

	_, err = ZKPFromBytes(nil)
	assert.ErrorIs(err, ErrMalformedEncoding)
	_, err = ZKPFromBytes(make([]byte, 3*ScalarSize+1))
	assert.ErrorIs(err, ErrMalformedEncoding)
}

func TestMACRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	mac := generateMAC(key, NewAmountAttribute(3).Commitment(), nil)

	decoded, err := MACFromBytes(mac.ToBytes())
	require.Nil(err)
	assert.True(mac.T.Equals(decoded.T))
	assert.True(mac.V.Equals(decoded.V))

	_, err = MACFromBytes(mac.ToBytes()[:40])
	assert.ErrorIs(err, ErrMalformedEncoding)
}

func TestRandomizedCoinRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	coin := mintCoin(t, key, 9, nil)
	rc, _, err := RandomizeCoin(coin, false)
	require.Nil(err)

	decoded, err := RandomizedCoinFromBytes(rc.ToBytes())
	require.Nil(err)
	assert.True(rc.Ca.Equals(decoded.Ca))
	assert.True(rc.Cs.Equals(decoded.Cs))
	assert.True(rc.Cx0.Equals(decoded.Cx0))
	assert.True(rc.Cx1.Equals(decoded.Cx1))
	assert.True(rc.Cv.Equals(decoded.Cv))

	_, err = RandomizedCoinFromBytes(nil)
	assert.ErrorIs(err, ErrMalformedEncoding)
}

func TestMintPublicKeyRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	pub := NewMintPrivateKey().Public()
	decoded, err := MintPublicKeyFromBytes(pub.ToBytes())
	require.Nil(err)
	assert.True(pub.Cw.Equals(decoded.Cw))
	assert.True(pub.I.Equals(decoded.I))

	_, err = MintPublicKeyFromBytes(make([]byte, PointSize))
	assert.ErrorIs(err, ErrMalformedEncoding)
}

func TestMintPrivateKeyRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	decoded, err := MintPrivateKeyFromBytes(key.ToBytes())
	require.Nil(err)
	assert.True(key.W.Equals(decoded.W))
	assert.True(key.Ys.Equals(decoded.Ys))
	assert.True(key.Public().Cw.Equals(decoded.Public().Cw))

	_, err = MintPrivateKeyFromBytes(key.ToBytes()[:5*ScalarSize])
	assert.ErrorIs(err, ErrMalformedEncoding)

	// An all-zero encoding decodes to scalars but fails key validation.
	_, err = MintPrivateKeyFromBytes(make([]byte, 6*ScalarSize))
	assert.ErrorIs(err, ErrInvalidSecretKey)
}

func TestRangeProofRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	attrs := []*AmountAttribute{NewAmountAttribute(11), NewAmountAttribute(101)}
	proof, commitments, err := ProveRange(attrs)
	require.Nil(err)

	decoded, err := RangeProofFromBytes(proof.ToBytes())
	require.Nil(err)
	assert.True(VerifyRange(decoded, commitments))

	_, err = RangeProofFromBytes(proof.ToBytes()[:50])
	assert.ErrorIs(err, ErrMalformedEncoding)

	// A corrupted point encoding is rejected at decode time, not later.
	raw := proof.ToBytes()
	for i := 0; i < PointSize; i++ {
		raw[i] = 0xff
	}
	_, err = RangeProofFromBytes(raw)
	assert.ErrorIs(err, ErrMalformedEncoding)
}

func TestInnerProductProofCodec(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var l1, r1 ristretto.Point
	l1.Rand()
	r1.Rand()
	proof := &InnerProductProof{
		LVec: []*ristretto.Point{&l1},
		RVec: []*ristretto.Point{&r1},
		A:    randomScalar(),
		B:    randomScalar(),
	}
	decoded, err := innerProductProofFromBytes(proof.ToBytes(), 1)
	require.Nil(err)
	assert.True(proof.LVec[0].Equals(decoded.LVec[0]))
	assert.True(proof.A.Equals(decoded.A))

	_, err = innerProductProofFromBytes(proof.ToBytes(), 2)
	assert.ErrorIs(err, ErrMalformedEncoding)
}
