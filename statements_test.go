package kvac

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintCoin(t *testing.T, key *MintPrivateKey, amount uint64, script []byte) *Coin {
	t.Helper()
	coin := &Coin{Amount: NewAmountAttribute(amount)}
	var ms *ristretto.Point
	if script != nil {
		coin.Script = NewScriptAttribute(script)
		ms = coin.Script.Commitment()
	}
	mac, proof, err := MintCredential(key, coin.Amount.Commitment(), ms)
	require.Nil(t, err)
	require.True(t, VerifyIssuance(key.Public(), &Coin{Amount: coin.Amount, Script: coin.Script, Mac: mac}, proof))
	coin.Mac = mac
	return coin
}

func TestBootstrap(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	attr := NewAmountAttribute(0)
	ma, proof, err := ProveBootstrap(attr)
	require.Nil(err)
	assert.True(VerifyBootstrap(ma, proof))

	// Any other commitment must not pass with this proof.
	assert.False(VerifyBootstrap(NewAmountAttribute(0).Commitment(), proof))

	_, _, err = ProveBootstrap(NewAmountAttribute(1))
	assert.NotNil(err)
}

func TestMACPresentation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	pub := key.Public()
	coin := mintCoin(t, key, 128, nil)

	rc, ra, err := RandomizeCoin(coin, false)
	require.Nil(err)
	proof, err := proveMAC(pub, coin, rc, ra)
	require.Nil(err)
	assert.True(verifyMAC(key, pub, rc, proof))

	// A different issuer key cannot validate the presentation.
	other := NewMintPrivateKey()
	assert.False(verifyMAC(other, other.Public(), rc, proof))

	// Forged presentation terms break the proof.
	var forged RandomizedCoin
	forged = *rc
	var bump ristretto.Point
	forged.Ca = bump.Add(rc.Ca, Gens().Gamount)
	assert.False(verifyMAC(key, pub, &forged, proof))
}

func TestSpendBalanced(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	pub := key.Public()
	inputs := []*Coin{
		mintCoin(t, key, 8, nil),
		mintCoin(t, key, 5, nil),
	}
	outputs := []*AmountAttribute{
		NewAmountAttribute(9),
		NewAmountAttribute(4),
	}

	proof, err := ProveSpend(pub, inputs, outputs, nil, 0)
	require.Nil(err)

	outCommitments := []*ristretto.Point{outputs[0].Commitment(), outputs[1].Commitment()}
	assert.True(VerifySpend(key, proof, outCommitments, nil, 0))

	// Claiming a fee that was not proven must fail.
	assert.False(VerifySpend(key, proof, outCommitments, nil, 1))

	// So must swapping in a different output commitment.
	tampered := []*ristretto.Point{outputs[0].Commitment(), NewAmountAttribute(4).Commitment()}
	assert.False(VerifySpend(key, proof, tampered, nil, 0))

	// And verifying under a different issuer key.
	assert.False(VerifySpend(NewMintPrivateKey(), proof, outCommitments, nil, 0))
}

func TestSpendWithFee(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	inputs := []*Coin{mintCoin(t, key, 10, nil)}
	outputs := []*AmountAttribute{NewAmountAttribute(7)}

	proof, err := ProveSpend(key.Public(), inputs, outputs, nil, 3)
	require.Nil(err)
	outCommitments := []*ristretto.Point{outputs[0].Commitment()}
	assert.True(VerifySpend(key, proof, outCommitments, nil, 3))
	assert.False(VerifySpend(key, proof, outCommitments, nil, 2))
}

func TestSpendNegativeDelta(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// Outputs exceed inputs by 2; the mint covers it with delta -2.
	key := NewMintPrivateKey()
	inputs := []*Coin{mintCoin(t, key, 5, nil)}
	outputs := []*AmountAttribute{NewAmountAttribute(7)}

	proof, err := ProveSpend(key.Public(), inputs, outputs, nil, -2)
	require.Nil(err)
	assert.True(VerifySpend(key, proof, []*ristretto.Point{outputs[0].Commitment()}, nil, -2))
}

func TestSpendUnbalancedAmounts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// The prover cannot make an unbalanced transaction verify: the
	// balance point keeps an amount component no blind can absorb.
	key := NewMintPrivateKey()
	inputs := []*Coin{mintCoin(t, key, 5, nil)}
	outputs := []*AmountAttribute{NewAmountAttribute(6)}

	proof, err := ProveSpend(key.Public(), inputs, outputs, nil, 0)
	require.Nil(err)
	assert.False(VerifySpend(key, proof, []*ristretto.Point{outputs[0].Commitment()}, nil, 0))
}

func TestSpendWithScripts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	script := []byte("2-of-3 multisig")
	key := NewMintPrivateKey()
	inputs := []*Coin{
		mintCoin(t, key, 4, script),
		mintCoin(t, key, 6, script),
	}
	outputs := []*AmountAttribute{NewAmountAttribute(10)}
	outputScripts := []*ScriptAttribute{NewScriptAttribute(script)}

	proof, err := ProveSpend(key.Public(), inputs, outputs, outputScripts, 0)
	require.Nil(err)
	require.NotNil(proof.Script)

	outCommitments := []*ristretto.Point{outputs[0].Commitment()}
	scriptCommitments := []*ristretto.Point{outputScripts[0].Commitment()}
	assert.True(VerifySpend(key, proof, outCommitments, scriptCommitments, 0))

	// The script proof is required when script commitments are given.
	stripped := &SpendProof{Inputs: proof.Inputs, MacProofs: proof.MacProofs, Balance: proof.Balance}
	assert.False(VerifySpend(key, stripped, outCommitments, scriptCommitments, 0))

	// A commitment to a different script must not verify.
	other := []*ristretto.Point{NewScriptAttribute([]byte("anyone can spend")).Commitment()}
	assert.False(VerifySpend(key, proof, outCommitments, other, 0))
}

func TestSpendScriptedWithoutReveal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// Scripted coins spend fine without proving anything about the
	// script; the lock only has to be satisfied when the mint demands it.
	key := NewMintPrivateKey()
	inputs := []*Coin{
		mintCoin(t, key, 4, []byte("lock")),
		mintCoin(t, key, 6, nil),
	}
	outputs := []*AmountAttribute{NewAmountAttribute(10)}

	proof, err := ProveSpend(key.Public(), inputs, outputs, nil, 0)
	require.Nil(err)
	require.Nil(proof.Script)
	assert.True(VerifySpend(key, proof, []*ristretto.Point{outputs[0].Commitment()}, nil, 0))
}

func TestSpendScriptMismatch(t *testing.T) {
	assert := assert.New(t)

	key := NewMintPrivateKey()
	inputs := []*Coin{mintCoin(t, key, 4, []byte("lock"))}
	outputs := []*AmountAttribute{NewAmountAttribute(4)}

	// Script count must match output count.
	scripts := []*ScriptAttribute{NewScriptAttribute([]byte("lock")), NewScriptAttribute([]byte("lock"))}
	_, err := ProveSpend(key.Public(), inputs, outputs, scripts, 0)
	assert.NotNil(err)

	// Scriptless inputs cannot satisfy a scripted spend.
	bare := []*Coin{mintCoin(t, key, 4, nil)}
	_, err = ProveSpend(key.Public(), bare, outputs, []*ScriptAttribute{NewScriptAttribute([]byte("lock"))}, 0)
	assert.ErrorIs(err, ErrMissingScript)
}

func TestEndToEndFlow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	key := NewMintPrivateKey()
	pub := key.Public()

	// A wallet bootstraps with a proven-zero coin, tops it up out of band,
	// then spends into two fresh outputs with range proofs.
	boot := NewAmountAttribute(0)
	ma, bootProof, err := ProveBootstrap(boot)
	require.Nil(err)
	require.True(VerifyBootstrap(ma, bootProof))
	mac, issueProof, err := MintCredential(key, ma, nil)
	require.Nil(err)
	bootCoin := &Coin{Amount: boot, Mac: mac}
	require.True(VerifyIssuance(pub, bootCoin, issueProof))

	inputs := []*Coin{bootCoin, mintCoin(t, key, 20, nil)}
	outputs := []*AmountAttribute{NewAmountAttribute(12), NewAmountAttribute(8)}

	spend, err := ProveSpend(pub, inputs, outputs, nil, 0)
	require.Nil(err)
	rangeProof, outCommitments, err := ProveRange(outputs)
	require.Nil(err)

	assert.True(VerifySpend(key, spend, outCommitments, nil, 0))
	assert.True(VerifyRange(rangeProof, outCommitments))

	// The same spend must fail when one MAC proof was made for a
	// different issuer.
	otherKey := NewMintPrivateKey()
	foreign := mintCoin(t, otherKey, 20, nil)
	mixed := []*Coin{bootCoin, foreign}
	badSpend, err := ProveSpend(pub, mixed, outputs, nil, 0)
	require.Nil(err)
	assert.False(VerifySpend(key, badSpend, outCommitments, nil, 0))
}

func TestSpendEdgeCases(t *testing.T) {
	assert := assert.New(t)

	key := NewMintPrivateKey()
	_, err := ProveSpend(key.Public(), nil, []*AmountAttribute{NewAmountAttribute(1)}, nil, 0)
	assert.ErrorIs(err, ErrEmptyInput)
	_, err = ProveSpend(key.Public(), []*Coin{mintCoin(t, key, 1, nil)}, nil, nil, 0)
	assert.ErrorIs(err, ErrEmptyInput)

	assert.False(VerifySpend(key, nil, nil, nil, 0))
}
