package kvac

import (
	"encoding/binary"
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

// RangeProof shows that every committed amount lies in [0, 2^AmountBits),
// in size logarithmic in the total bit count.
type RangeProof struct {
	A, S       *ristretto.Point
	T1, T2     *ristretto.Point
	TX         *ristretto.Scalar
	TXBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar
	IPP        *InnerProductProof
}

func pedersenCommit(value, blinding *ristretto.Scalar) *ristretto.Point {
	g := Gens()
	return multiscalarMul(
		[]*ristretto.Scalar{value, blinding},
		[]*ristretto.Point{g.Gamount, g.Gblind},
	)
}

// amountValue extracts the uint64 behind an amount scalar, rejecting
// anything at or above 2^AmountBits.
func amountValue(attr *AmountAttribute) (uint64, error) {
	buf := attr.Amount.Bytes()
	for _, b := range buf[8:] {
		if b != 0 {
			return 0, ErrRangeViolation
		}
	}
	v := binary.LittleEndian.Uint64(buf[:8])
	if v >= 1<<AmountBits {
		return 0, ErrRangeViolation
	}
	return v, nil
}

func padAttributes(attrs []*AmountAttribute) []*AmountAttribute {
	out := append([]*AmountAttribute{}, attrs...)
	for len(out) < nextPowerOfTwo(len(attrs)) {
		out = append(out, out[len(out)-1])
	}
	return out
}

func padCommitments(commitments []*ristretto.Point) []*ristretto.Point {
	out := append([]*ristretto.Point{}, commitments...)
	for len(out) < nextPowerOfTwo(len(commitments)) {
		out = append(out, out[len(out)-1])
	}
	return out
}

// ProveRange builds one aggregated proof that every attribute's amount is
// in range, and returns it with the attribute commitments in matching
// order. The attribute list is padded to a power of two by repeating the
// last entry.
func ProveRange(attrs []*AmountAttribute) (*RangeProof, []*ristretto.Point, error) {
	if len(attrs) == 0 {
		return nil, nil, ErrEmptyInput
	}
	if len(attrs) > MaxAggregation {
		return nil, nil, fmt.Errorf("at most %d attributes per proof, got %d", MaxAggregation, len(attrs))
	}
	commitments := make([]*ristretto.Point, len(attrs))
	values := make([]uint64, len(attrs))
	for i, attr := range attrs {
		v, err := amountValue(attr)
		if err != nil {
			return nil, nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		values[i] = v
		commitments[i] = attr.Commitment()
	}

	padded := padAttributes(attrs)
	for i := len(values); i < len(padded); i++ {
		values = append(values, values[len(values)-1])
	}
	g := Gens()
	n := AmountBits
	m := len(padded)
	nm := n * m

	transcript := newTranscript(RANGE_PROOF_DOMAIN_TAG)
	rangeproofDomainSep(uint64(n), uint64(m), transcript)
	for _, attr := range padded {
		appendPoint("V", attr.Commitment(), transcript)
	}

	// A commits the bit vectors: per bit, G_i when set and -H_i when not.
	aBlinding := randomScalar()
	var A ristretto.Point
	A.ScalarMult(g.Gblind, aBlinding)
	for i := 0; i < nm; i++ {
		var point ristretto.Point
		if (values[i/n]>>(i%n))&1 == 1 {
			point = *g.BpG[i]
		} else {
			point.Neg(g.BpH[i])
		}
		A.Add(&A, &point)
	}

	sBlinding := randomScalar()
	sL := make([]*ristretto.Scalar, nm)
	sR := make([]*ristretto.Scalar, nm)
	for i := 0; i < nm; i++ {
		sL[i] = randomScalar()
		sR[i] = randomScalar()
	}
	sScalars := append([]*ristretto.Scalar{sBlinding}, append(append([]*ristretto.Scalar{}, sL...), sR...)...)
	sPoints := append([]*ristretto.Point{g.Gblind}, append(append([]*ristretto.Point{}, g.BpG[:nm]...), g.BpH[:nm]...)...)
	S := multiscalarMul(sScalars, sPoints)

	appendPoint("A", &A, transcript)
	appendPoint("S", S, transcript)
	y := challengeScalar("y", transcript)
	z := challengeScalar("z", transcript)

	// l(X) = aL - z + sL*X
	// r(X) = y^i (.) (aR + z + sR*X) + z^(2+j)*2^k
	lPoly := zeroVecPoly1(nm)
	rPoly := zeroVecPoly1(nm)
	expY := newScalarExp(y)
	var one ristretto.Scalar
	one.SetOne()
	for i := 0; i < nm; i++ {
		j, k := i/n, i%n
		bit := uint64ToScalar((values[j] >> k) & 1)
		var aR ristretto.Scalar
		aR.Sub(bit, &one)

		yi := expY.Next()
		zz2 := scalarExpVartime(z, uint64(2+j))

		lPoly.a[i].Sub(bit, z)
		lPoly.b[i] = sL[i]

		var tmp1, tmp2, exp2 ristretto.Scalar
		tmp1.Add(&aR, z)
		tmp1.Mul(yi, &tmp1)
		exp2.SetOne()
		for b := 0; b < k; b++ {
			exp2.Add(&exp2, &exp2)
		}
		tmp2.Mul(zz2, &exp2)
		rPoly.a[i].Add(&tmp1, &tmp2)
		rPoly.b[i].Mul(yi, sR[i])
	}

	tPoly := lPoly.InnerProduct(rPoly)

	t1Blinding := randomScalar()
	t2Blinding := randomScalar()
	T1 := pedersenCommit(tPoly.b, t1Blinding)
	T2 := pedersenCommit(tPoly.c, t2Blinding)
	appendPoint("T_1", T1, transcript)
	appendPoint("T_2", T2, transcript)
	x := challengeScalar("x", transcript)

	tx := tPoly.Eval(x)
	var txBlinding, xx ristretto.Scalar
	xx.Mul(x, x)
	txBlinding.Mul(x, t1Blinding)
	var t2Term ristretto.Scalar
	t2Term.Mul(&xx, t2Blinding)
	txBlinding.Add(&txBlinding, &t2Term)
	for j := range padded {
		var vTerm ristretto.Scalar
		vTerm.Mul(scalarExpVartime(z, uint64(2+j)), padded[j].Blind)
		txBlinding.Add(&txBlinding, &vTerm)
	}
	var eBlinding ristretto.Scalar
	eBlinding.Mul(sBlinding, x)
	eBlinding.Add(aBlinding, &eBlinding)

	lVec := lPoly.Eval(x)
	rVec := rPoly.Eval(x)

	appendScalar("t_x", tx, transcript)
	appendScalar("t_x_blinding", &txBlinding, transcript)
	appendScalar("e_blinding", &eBlinding, transcript)
	w := challengeScalar("w", transcript)
	var q ristretto.Point
	q.ScalarMult(g.Gamount, w)

	gFactors := make([]*ristretto.Scalar, nm)
	hFactors := make([]*ristretto.Scalar, nm)
	var invY ristretto.Scalar
	invY.Inverse(y)
	expInvY := newScalarExp(&invY)
	for i := 0; i < nm; i++ {
		gFactors[i] = &one
		hFactors[i] = expInvY.Next()
	}

	// The folding mutates the generator vectors, so hand it clones.
	gVec := make([]*ristretto.Point, nm)
	hVec := make([]*ristretto.Point, nm)
	for i := 0; i < nm; i++ {
		var pg, ph ristretto.Point
		gVec[i] = pg.Set(g.BpG[i])
		hVec[i] = ph.Set(g.BpH[i])
	}
	ipp := createInnerProductProof(transcript, &q, gFactors, hFactors, gVec, hVec, lVec, rVec)

	proof := &RangeProof{
		A:          &A,
		S:          S,
		T1:         T1,
		T2:         T2,
		TX:         tx,
		TXBlinding: &txBlinding,
		EBlinding:  &eBlinding,
		IPP:        ipp,
	}
	return proof, commitments, nil
}

// rangeDelta is the public correction term
//
//	delta(y, z) = (z - z²)·<1, y^nm> - sum_j z^(3+j)·<1, 2^n>
func rangeDelta(y, z *ristretto.Scalar, n, m int) *ristretto.Scalar {
	var sumY ristretto.Scalar
	sumY.SetZero()
	expY := newScalarExp(y)
	for i := 0; i < n*m; i++ {
		sumY.Add(&sumY, expY.Next())
	}
	var zz, d ristretto.Scalar
	zz.Mul(z, z)
	d.Sub(z, &zz)
	d.Mul(&d, &sumY)

	sumTwo := uint64ToScalar(uint64(1)<<uint(n) - 1)
	for j := 0; j < m; j++ {
		var t ristretto.Scalar
		t.Mul(scalarExpVartime(z, uint64(3+j)), sumTwo)
		d.Sub(&d, &t)
	}
	return &d
}

// VerifyRange checks an aggregated range proof against the attribute
// commitments it was built over.
func VerifyRange(proof *RangeProof, commitments []*ristretto.Point) bool {
	if proof == nil || proof.IPP == nil || len(commitments) == 0 {
		return false
	}
	if len(commitments) > MaxAggregation {
		return false
	}
	padded := padCommitments(commitments)
	g := Gens()
	n := AmountBits
	m := len(padded)
	nm := n * m

	transcript := newTranscript(RANGE_PROOF_DOMAIN_TAG)
	rangeproofDomainSep(uint64(n), uint64(m), transcript)
	for _, v := range padded {
		appendPoint("V", v, transcript)
	}
	appendPoint("A", proof.A, transcript)
	appendPoint("S", proof.S, transcript)
	y := challengeScalar("y", transcript)
	z := challengeScalar("z", transcript)
	appendPoint("T_1", proof.T1, transcript)
	appendPoint("T_2", proof.T2, transcript)
	x := challengeScalar("x", transcript)
	appendScalar("t_x", proof.TX, transcript)
	appendScalar("t_x_blinding", proof.TXBlinding, transcript)
	appendScalar("e_blinding", proof.EBlinding, transcript)
	w := challengeScalar("w", transcript)
	var q ristretto.Point
	q.ScalarMult(g.Gamount, w)

	// Polynomial identity: t_x and its blind must open the commitment
	// sum_j z^(2+j)·V_j + delta(y,z)·Gamount + x·T1 + x²·T2.
	lhs := pedersenCommit(proof.TX, proof.TXBlinding)
	var xx ristretto.Scalar
	xx.Mul(x, x)
	rhsScalars := []*ristretto.Scalar{rangeDelta(y, z, n, m), x, &xx}
	rhsPoints := []*ristretto.Point{g.Gamount, proof.T1, proof.T2}
	for j, v := range padded {
		rhsScalars = append(rhsScalars, scalarExpVartime(z, uint64(2+j)))
		rhsPoints = append(rhsPoints, v)
	}
	if !lhs.Equals(multiscalarMul(rhsScalars, rhsPoints)) {
		return false
	}

	// Expected inner-product commitment:
	// P = A + x·S - eBlinding·Gblind - z·sum(G)
	//   + sum_i y^-i·(z·y^i + z^(2+j)·2^k)·H_i + t_x·Q
	var invY ristretto.Scalar
	invY.Inverse(y)
	hFactors := make([]*ristretto.Scalar, nm)
	expInvY := newScalarExp(&invY)
	for i := 0; i < nm; i++ {
		hFactors[i] = expInvY.Next()
	}

	pScalars := make([]*ristretto.Scalar, 0, 2*nm+4)
	pPoints := make([]*ristretto.Point, 0, 2*nm+4)
	var one, negZ, negE ristretto.Scalar
	one.SetOne()
	negZ.Neg(z)
	negE.Neg(proof.EBlinding)
	pScalars = append(pScalars, &one, x, &negE, proof.TX)
	pPoints = append(pPoints, proof.A, proof.S, g.Gblind, &q)
	expY := newScalarExp(y)
	for i := 0; i < nm; i++ {
		j, k := i/n, i%n
		pScalars = append(pScalars, &negZ)
		pPoints = append(pPoints, g.BpG[i])

		yi := expY.Next()
		var exp2, term ristretto.Scalar
		exp2.SetOne()
		for b := 0; b < k; b++ {
			exp2.Add(&exp2, &exp2)
		}
		term.Mul(z, yi)
		var zTerm ristretto.Scalar
		zTerm.Mul(scalarExpVartime(z, uint64(2+j)), &exp2)
		term.Add(&term, &zTerm)
		term.Mul(&term, hFactors[i])
		pScalars = append(pScalars, &term)
		pPoints = append(pPoints, g.BpH[i])
	}
	p := multiscalarMul(pScalars, pPoints)

	return proof.IPP.Verify(transcript, p, &q, hFactors, g.BpG[:nm], g.BpH[:nm])
}
