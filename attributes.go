package kvac

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/zeebo/blake3"
)

// AmountAttribute is a client-held opening of a Pedersen amount commitment.
type AmountAttribute struct {
	Amount *ristretto.Scalar
	Blind  *ristretto.Scalar
}

// NewAmountAttribute commits to amount under a fresh blinding factor.
func NewAmountAttribute(amount uint64) *AmountAttribute {
	return &AmountAttribute{
		Amount: uint64ToScalar(amount),
		Blind:  randomScalar(),
	}
}

// Tweak re-derives the attribute with a new amount but the same blind, so
// proofs built against the old commitment's blind stay consistent.
func (a *AmountAttribute) Tweak(amount uint64) *AmountAttribute {
	return &AmountAttribute{
		Amount: uint64ToScalar(amount),
		Blind:  a.Blind,
	}
}

// Commitment returns Blind*Gblind + Amount*Gamount.
func (a *AmountAttribute) Commitment() *ristretto.Point {
	g := Gens()
	return multiscalarMul(
		[]*ristretto.Scalar{a.Blind, a.Amount},
		[]*ristretto.Point{g.Gblind, g.Gamount},
	)
}

// ScriptAttribute is a client-held opening of a script hash commitment.
type ScriptAttribute struct {
	ScriptHash *ristretto.Scalar
	Blind      *ristretto.Scalar
}

// NewScriptAttribute hashes the script bytes into the scalar field and
// commits under a fresh blinding factor.
func NewScriptAttribute(script []byte) *ScriptAttribute {
	h := blake3.New()
	h.Write([]byte(SCRIPT_HASH_DOMAIN_TAG))
	h.Write(script)
	var wide [64]byte
	h.Digest().Read(wide[:])
	var s ristretto.Scalar
	return &ScriptAttribute{
		ScriptHash: s.SetReduced(&wide),
		Blind:      randomScalar(),
	}
}

// Commitment returns Blind*Gblind + ScriptHash*Gscript.
func (a *ScriptAttribute) Commitment() *ristretto.Point {
	g := Gens()
	return multiscalarMul(
		[]*ristretto.Scalar{a.Blind, a.ScriptHash},
		[]*ristretto.Point{g.Gblind, g.Gscript},
	)
}
