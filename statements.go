package kvac

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/sync/errgroup"
)

// Statement builders are pure mappings from public data to the relation set
// a proof commits to. The prover supplies the matching secret list; the
// verifier rebuilds the same statement from public data alone.

func bootstrapStatement(ma *ristretto.Point) Statement {
	g := Gens()
	return Statement{
		Domain: BOOTSTRAP_DOMAIN_TAG,
		Equations: []Equation{
			{LHS: ma, RHS: [][]*ristretto.Point{{g.Gblind}}},
		},
	}
}

// ProveBootstrap proves that attr commits to zero. Used only at initial
// issuance; the amount must be zero or the resulting proof will not verify.
func ProveBootstrap(attr *AmountAttribute) (*ristretto.Point, *ZKP, error) {
	var zero ristretto.Scalar
	zero.SetZero()
	if !zero.Equals(attr.Amount) {
		return nil, nil, fmt.Errorf("bootstrap attribute must commit to zero")
	}
	ma := attr.Commitment()
	proof, err := ProveStatement(bootstrapStatement(ma), []*ristretto.Scalar{attr.Blind}, newTranscript(BOOTSTRAP_DOMAIN_TAG))
	if err != nil {
		return nil, nil, err
	}
	return ma, proof, nil
}

// VerifyBootstrap checks that ma commits to a zero amount.
func VerifyBootstrap(ma *ristretto.Point, proof *ZKP) bool {
	return VerifyStatement(bootstrapStatement(ma), proof, newTranscript(BOOTSTRAP_DOMAIN_TAG))
}

// issuanceStatement relates a MAC to the published mint key. Secrets, in
// order: w, w', x0, x1, ya, ys.
func issuanceStatement(pub *MintPublicKey, mac *MAC, ma, ms *ristretto.Point) Statement {
	g := Gens()
	u := tagPoint(mac.T)
	var tu ristretto.Point
	tu.ScalarMult(u, mac.T)
	var lhsI ristretto.Point
	lhsI.Sub(g.GzMac, pub.I)
	if ms == nil {
		var id ristretto.Point
		ms = id.SetZero()
	}
	return Statement{
		Domain: ISSUANCE_DOMAIN_TAG,
		Equations: []Equation{
			{LHS: pub.Cw, RHS: [][]*ristretto.Point{{g.W}, {g.Wprime}, nil, nil, nil, nil}},
			{LHS: &lhsI, RHS: [][]*ristretto.Point{nil, nil, {g.X0}, {g.X1}, {g.GzAmount}, {g.GzScript}}},
			{LHS: mac.V, RHS: [][]*ristretto.Point{{g.W}, nil, {u}, {&tu}, {ma}, {ms}}},
		},
	}
}

// MintCredential mints a MAC over the commitment pair and proves the
// published key was used consistently. ms may be nil for scriptless coins.
func MintCredential(priv *MintPrivateKey, ma, ms *ristretto.Point) (*MAC, *ZKP, error) {
	if err := priv.Validate(); err != nil {
		return nil, nil, err
	}
	if ma == nil {
		return nil, nil, ErrEmptyInput
	}
	mac := generateMAC(priv, ma, ms)
	secrets := []*ristretto.Scalar{priv.W, priv.Wprime, priv.X0, priv.X1, priv.Ya, priv.Ys}
	proof, err := ProveStatement(issuanceStatement(priv.Public(), mac, ma, ms), secrets, newTranscript(ISSUANCE_DOMAIN_TAG))
	if err != nil {
		return nil, nil, err
	}
	return mac, proof, nil
}

// VerifyIssuance checks, against the published key only, that the coin's
// MAC was minted with the key behind pub over the coin's exact commitments.
func VerifyIssuance(pub *MintPublicKey, coin *Coin, proof *ZKP) bool {
	var ms *ristretto.Point
	if coin.Script != nil {
		ms = coin.Script.Commitment()
	}
	statement := issuanceStatement(pub, coin.Mac, coin.Amount.Commitment(), ms)
	return VerifyStatement(statement, proof, newTranscript(ISSUANCE_DOMAIN_TAG))
}

// macStatement relates a randomized coin to a MAC valid under the issuer
// key. Secrets, in order: ra, ra*t, t, amount blind, amount.
func macStatement(z *ristretto.Point, rc *RandomizedCoin, pub *MintPublicKey) Statement {
	g := Gens()
	var negX0 ristretto.Point
	negX0.Neg(g.X0)
	return Statement{
		Domain: MAC_DOMAIN_TAG,
		Equations: []Equation{
			{LHS: z, RHS: [][]*ristretto.Point{{pub.I}, nil, nil, nil, nil}},
			{LHS: rc.Cx1, RHS: [][]*ristretto.Point{{g.X1}, {&negX0}, {rc.Cx0}, nil, nil}},
			{LHS: rc.Ca, RHS: [][]*ristretto.Point{{g.GzAmount}, nil, nil, {g.Gblind}, {g.Gamount}}},
		},
	}
}

// proveMAC is the client side: it knows the coin and the randomization
// scalar, and derives Z = ra*I from the public key.
func proveMAC(pub *MintPublicKey, coin *Coin, rc *RandomizedCoin, ra *ristretto.Scalar) (*ZKP, error) {
	var z ristretto.Point
	z.ScalarMult(pub.I, ra)
	var rat ristretto.Scalar
	rat.Mul(ra, coin.Mac.T)
	secrets := []*ristretto.Scalar{ra, &rat, coin.Mac.T, coin.Amount.Blind, coin.Amount.Amount}
	statement := macStatement(&z, rc, pub)
	return ProveStatement(statement, secrets, newTranscript(MAC_DOMAIN_TAG))
}

// verifyMAC is the issuer side: only the issuer can recompute
//
//	Z = Cv - (w*W + x0*Cx0 + x1*Cx1 + ya*Ca + ys*Cs)
//
// which equals ra*I exactly when the presentation derives from a MAC made
// with this key.
func verifyMAC(priv *MintPrivateKey, pub *MintPublicKey, rc *RandomizedCoin, proof *ZKP) bool {
	g := Gens()
	var z ristretto.Point
	z.Sub(rc.Cv, multiscalarMul(
		[]*ristretto.Scalar{priv.W, priv.X0, priv.X1, priv.Ya, priv.Ys},
		[]*ristretto.Point{g.W, rc.Cx0, rc.Cx1, rc.Ca, rc.Cs},
	))
	return VerifyStatement(macStatement(&z, rc, pub), proof, newTranscript(MAC_DOMAIN_TAG))
}

// balanceStatement proves knowledge of the blinding difference behind
//
//	B = sum(Ca_in) - sum(Ma_out) - delta*Gamount
//
// Secrets: sum of randomization scalars, net amount-blind difference.
func balanceStatement(b *ristretto.Point) Statement {
	g := Gens()
	return Statement{
		Domain: BALANCE_DOMAIN_TAG,
		Equations: []Equation{
			{LHS: b, RHS: [][]*ristretto.Point{{g.GzAmount}, {g.Gblind}}},
		},
	}
}

func balancePoint(inputs []*RandomizedCoin, outputs []*ristretto.Point, delta int64) *ristretto.Point {
	var b ristretto.Point
	b.SetZero()
	for _, rc := range inputs {
		b.Add(&b, rc.Ca)
	}
	for _, ma := range outputs {
		b.Sub(&b, ma)
	}
	var d ristretto.Point
	d.ScalarMult(Gens().Gamount, int64ToScalar(delta))
	return b.Sub(&b, &d)
}

// scriptEqualityStatement proves every input and output commits to one
// script value. Secrets, in order: the shared script hash, then per input
// its randomization scalar and script blind, then per output its blind.
func scriptEqualityStatement(inputs []*RandomizedCoin, outputs []*ristretto.Point) Statement {
	g := Gens()
	k, m := len(inputs), len(outputs)
	total := 1 + 2*k + m
	eqs := make([]Equation, 0, k+m)
	for i, rc := range inputs {
		rhs := make([][]*ristretto.Point, total)
		rhs[0] = []*ristretto.Point{g.Gscript}
		rhs[1+i] = []*ristretto.Point{g.GzScript}
		rhs[1+k+i] = []*ristretto.Point{g.Gblind}
		eqs = append(eqs, Equation{LHS: rc.Cs, RHS: rhs})
	}
	for j, ms := range outputs {
		rhs := make([][]*ristretto.Point, total)
		rhs[0] = []*ristretto.Point{g.Gscript}
		rhs[1+2*k+j] = []*ristretto.Point{g.Gblind}
		eqs = append(eqs, Equation{LHS: ms, RHS: rhs})
	}
	return Statement{Domain: SCRIPT_EQUALITY_DOMAIN_TAG, Equations: eqs}
}

// SpendProof is the client's complete presentation for one transaction.
type SpendProof struct {
	Inputs    []*RandomizedCoin
	MacProofs []*ZKP
	Balance   *ZKP
	Script    *ZKP
}

// ProveSpend randomizes the input coins and builds every proof a spend
// needs: one MAC proof per input, a single balance proof over all inputs
// and outputs with the public delta, and a script equality proof when
// output scripts are given. delta is the signed difference
// sum(inputs) - sum(outputs).
func ProveSpend(pub *MintPublicKey, inputs []*Coin, outputs []*AmountAttribute, outputScripts []*ScriptAttribute, delta int64) (*SpendProof, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, ErrEmptyInput
	}
	withScripts := len(outputScripts) > 0
	if withScripts && len(outputScripts) != len(outputs) {
		return nil, fmt.Errorf("got %d output scripts for %d outputs", len(outputScripts), len(outputs))
	}

	randomized := make([]*RandomizedCoin, len(inputs))
	ras := make([]*ristretto.Scalar, len(inputs))
	macProofs := make([]*ZKP, len(inputs))
	for i, coin := range inputs {
		rc, ra, err := RandomizeCoin(coin, withScripts)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		randomized[i] = rc
		ras[i] = ra
		proof, err := proveMAC(pub, coin, rc, ra)
		if err != nil {
			return nil, err
		}
		macProofs[i] = proof
	}

	var zSum, rDiff ristretto.Scalar
	zSum.SetZero()
	rDiff.SetZero()
	for i := range inputs {
		zSum.Add(&zSum, ras[i])
		rDiff.Add(&rDiff, inputs[i].Amount.Blind)
	}
	outCommitments := make([]*ristretto.Point, len(outputs))
	for j, out := range outputs {
		rDiff.Sub(&rDiff, out.Blind)
		outCommitments[j] = out.Commitment()
	}
	b := balancePoint(randomized, outCommitments, delta)
	balanceProof, err := ProveStatement(balanceStatement(b), []*ristretto.Scalar{&zSum, &rDiff}, newTranscript(BALANCE_DOMAIN_TAG))
	if err != nil {
		return nil, err
	}

	spend := &SpendProof{
		Inputs:    randomized,
		MacProofs: macProofs,
		Balance:   balanceProof,
	}

	if withScripts {
		secrets := make([]*ristretto.Scalar, 0, 1+2*len(inputs)+len(outputScripts))
		secrets = append(secrets, inputs[0].Script.ScriptHash)
		for i := range inputs {
			secrets = append(secrets, ras[i])
		}
		for _, coin := range inputs {
			secrets = append(secrets, coin.Script.Blind)
		}
		msOut := make([]*ristretto.Point, len(outputScripts))
		for j, attr := range outputScripts {
			secrets = append(secrets, attr.Blind)
			msOut[j] = attr.Commitment()
		}
		statement := scriptEqualityStatement(randomized, msOut)
		spend.Script, err = ProveStatement(statement, secrets, newTranscript(SCRIPT_EQUALITY_DOMAIN_TAG))
		if err != nil {
			return nil, err
		}
	}
	return spend, nil
}

// VerifySpend checks every proof of a spend atomically: the per-input MAC
// proofs (in parallel, they share no transcript), the balance proof against
// the output commitments and public delta, and the script equality proof
// when output script commitments are given. Pure predicate: no state is
// touched on either outcome.
func VerifySpend(priv *MintPrivateKey, proof *SpendProof, outputs []*ristretto.Point, outputScripts []*ristretto.Point, delta int64) bool {
	if priv.Validate() != nil {
		return false
	}
	if proof == nil || len(proof.Inputs) == 0 || len(outputs) == 0 {
		return false
	}
	if len(proof.MacProofs) != len(proof.Inputs) {
		return false
	}
	if (proof.Script == nil) != (len(outputScripts) == 0) {
		return false
	}

	pub := priv.Public()
	var group errgroup.Group
	for i := range proof.Inputs {
		i := i
		group.Go(func() error {
			if !verifyMAC(priv, pub, proof.Inputs[i], proof.MacProofs[i]) {
				return fmt.Errorf("input %d: %w", i, ErrProofInvalid)
			}
			return nil
		})
	}
	if group.Wait() != nil {
		return false
	}

	b := balancePoint(proof.Inputs, outputs, delta)
	if !VerifyStatement(balanceStatement(b), proof.Balance, newTranscript(BALANCE_DOMAIN_TAG)) {
		return false
	}

	if proof.Script != nil {
		statement := scriptEqualityStatement(proof.Inputs, outputScripts)
		if !VerifyStatement(statement, proof.Script, newTranscript(SCRIPT_EQUALITY_DOMAIN_TAG)) {
			return false
		}
	}
	return true
}
