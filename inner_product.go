package kvac

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// InnerProductProof is the logarithmic compression of the two secret
// vectors of a range proof: one (L, R) pair per halving round plus the two
// fully folded scalars.
type InnerProductProof struct {
	LVec []*ristretto.Point
	RVec []*ristretto.Point
	A, B *ristretto.Scalar
}

// createInnerProductProof folds aVec and bVec round by round. The factor
// vectors scale the generators during the first round only; afterwards the
// folded generators carry them. The transcript must already contain every
// commitment the surrounding proof made.
func createInnerProductProof(transcript *merlin.Transcript, q *ristretto.Point, gFactors, hFactors []*ristretto.Scalar, gVec, hVec []*ristretto.Point, aVec, bVec []*ristretto.Scalar) *InnerProductProof {
	n := len(gVec)

	if len(hVec) != n ||
		len(aVec) != n ||
		len(bVec) != n ||
		len(gFactors) != n ||
		len(hFactors) != n {
		panic(fmt.Sprintf("createInnerProductProof invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}
	if bits.OnesCount32(uint32(n)) > 1 {
		panic(fmt.Sprintf("createInnerProductProof invalid n %d", n))
	}

	G := gVec
	H := hVec
	a := aVec
	b := bVec

	innerproductDomainSep(uint64(n), transcript)

	var LVec, RVec []*ristretto.Point

	if n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		scalarsL := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := range aL {
			var r ristretto.Scalar
			scalarsL = append(scalarsL, r.Mul(aL[i], gFactors[n+i]))
		}
		for i := range bR {
			var r ristretto.Scalar
			scalarsL = append(scalarsL, r.Mul(bR[i], hFactors[i]))
		}
		scalarsL = append(scalarsL, cL)

		pointsL := make([]*ristretto.Point, 0, 2*n+1)
		pointsL = append(pointsL, gR...)
		pointsL = append(pointsL, hL...)
		pointsL = append(pointsL, q)
		L := multiscalarMul(scalarsL, pointsL)

		scalarsR := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := range aR {
			var r ristretto.Scalar
			scalarsR = append(scalarsR, r.Mul(aR[i], gFactors[i]))
		}
		for i := range bL {
			var r ristretto.Scalar
			scalarsR = append(scalarsR, r.Mul(bL[i], hFactors[n+i]))
		}
		scalarsR = append(scalarsR, cR)

		pointsR := make([]*ristretto.Point, 0, 2*n+1)
		pointsR = append(pointsR, gL...)
		pointsR = append(pointsR, hR...)
		pointsR = append(pointsR, q)
		R := multiscalarMul(scalarsR, pointsR)

		LVec = append(LVec, L)
		RVec = append(RVec, R)

		appendPoint("L", L, transcript)
		appendPoint("R", R, transcript)

		u := challengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2, r3, r4 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))

			var f1, f2, f3, f4 ristretto.Scalar
			f1.Mul(&uInv, gFactors[i])
			f2.Mul(u, gFactors[n+i])
			gL[i] = multiscalarMul([]*ristretto.Scalar{&f1, &f2}, []*ristretto.Point{gL[i], gR[i]})
			f3.Mul(u, hFactors[i])
			f4.Mul(&uInv, hFactors[n+i])
			hL[i] = multiscalarMul([]*ristretto.Scalar{&f3, &f4}, []*ristretto.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	for n != 1 {
		n = n / 2

		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		scalarsL := append(append(append([]*ristretto.Scalar{}, aL...), bR...), cL)
		pointsL := append(append(append([]*ristretto.Point{}, gR...), hL...), q)
		L := multiscalarMul(scalarsL, pointsL)

		scalarsR := append(append(append([]*ristretto.Scalar{}, aR...), bL...), cR)
		pointsR := append(append(append([]*ristretto.Point{}, gL...), hR...), q)
		R := multiscalarMul(scalarsR, pointsR)

		LVec = append(LVec, L)
		RVec = append(RVec, R)
		appendPoint("L", L, transcript)
		appendPoint("R", R, transcript)

		u := challengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2, r3, r4 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))
			gL[i] = multiscalarMul([]*ristretto.Scalar{&uInv, u}, []*ristretto.Point{gL[i], gR[i]})
			hL[i] = multiscalarMul([]*ristretto.Scalar{u, &uInv}, []*ristretto.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	return &InnerProductProof{
		LVec: LVec,
		RVec: RVec,
		A:    a[0],
		B:    b[0],
	}
}

// Verify checks the argument in unrolled form: instead of folding the
// generator vectors it scales each original generator by the product of
// round challenges indicated by its bit position, so only one multiscalar
// comparison is needed. p is the expected commitment
// <l, G> + <r, hFactors·H> + <l, r>·Q.
func (proof *InnerProductProof) Verify(transcript *merlin.Transcript, p, q *ristretto.Point, hFactors []*ristretto.Scalar, gVec, hVec []*ristretto.Point) bool {
	n := len(gVec)
	if n == 0 || bits.OnesCount32(uint32(n)) > 1 {
		return false
	}
	rounds := bits.TrailingZeros32(uint32(n))
	if len(proof.LVec) != rounds || len(proof.RVec) != rounds {
		return false
	}
	if len(hVec) != n || len(hFactors) != n {
		return false
	}

	innerproductDomainSep(uint64(n), transcript)

	challenges := make([]*ristretto.Scalar, rounds)
	challengesInv := make([]*ristretto.Scalar, rounds)
	for k := 0; k < rounds; k++ {
		appendPoint("L", proof.LVec[k], transcript)
		appendPoint("R", proof.RVec[k], transcript)
		challenges[k] = challengeScalar("u", transcript)
		var inv ristretto.Scalar
		challengesInv[k] = inv.Inverse(challenges[k])
	}

	// s[i] = prod over rounds k of u_k^(+-1); the exponent is positive
	// when bit (rounds-1-k) of i is set. The first round corresponds to
	// the most significant bit.
	s := make([]*ristretto.Scalar, n)
	for i := 0; i < n; i++ {
		var si ristretto.Scalar
		si.SetOne()
		for k := 0; k < rounds; k++ {
			if i&(1<<(rounds-1-k)) != 0 {
				si.Mul(&si, challenges[k])
			} else {
				si.Mul(&si, challengesInv[k])
			}
		}
		s[i] = &si
	}

	scalars := make([]*ristretto.Scalar, 0, 2*n+1)
	points := make([]*ristretto.Point, 0, 2*n+1)
	for i := 0; i < n; i++ {
		var r ristretto.Scalar
		scalars = append(scalars, r.Mul(proof.A, s[i]))
		points = append(points, gVec[i])
	}
	for i := 0; i < n; i++ {
		var r ristretto.Scalar
		r.Mul(proof.B, s[n-1-i])
		scalars = append(scalars, r.Mul(&r, hFactors[i]))
		points = append(points, hVec[i])
	}
	var ab ristretto.Scalar
	scalars = append(scalars, ab.Mul(proof.A, proof.B))
	points = append(points, q)
	right := multiscalarMul(scalars, points)

	var left ristretto.Point
	left.Set(p)
	for k := 0; k < rounds; k++ {
		var uu, uuInv ristretto.Scalar
		uu.Mul(challenges[k], challenges[k])
		uuInv.Mul(challengesInv[k], challengesInv[k])
		left.Add(&left, multiscalarMul(
			[]*ristretto.Scalar{&uu, &uuInv},
			[]*ristretto.Point{proof.LVec[k], proof.RVec[k]},
		))
	}

	return left.Equals(right)
}

// ToBytes serializes the proof as the (L, R) pairs followed by the two
// folded scalars.
func (proof *InnerProductProof) ToBytes() []byte {
	var buf []byte
	for i := range proof.LVec {
		buf = append(buf, proof.LVec[i].Bytes()...)
		buf = append(buf, proof.RVec[i].Bytes()...)
	}
	buf = append(buf, proof.A.Bytes()...)
	buf = append(buf, proof.B.Bytes()...)
	return buf
}

func innerProductProofFromBytes(data []byte, rounds int) (*InnerProductProof, error) {
	want := rounds*2*PointSize + 2*ScalarSize
	if len(data) != want {
		return nil, fmt.Errorf("inner product proof: want %d bytes, got %d: %w", want, len(data), ErrMalformedEncoding)
	}
	proof := &InnerProductProof{
		LVec: make([]*ristretto.Point, rounds),
		RVec: make([]*ristretto.Point, rounds),
	}
	var err error
	for i := 0; i < rounds; i++ {
		if proof.LVec[i], err = PointFromBytes(data[:PointSize]); err != nil {
			return nil, err
		}
		data = data[PointSize:]
		if proof.RVec[i], err = PointFromBytes(data[:PointSize]); err != nil {
			return nil, err
		}
		data = data[PointSize:]
	}
	if proof.A, err = ScalarFromBytes(data[:ScalarSize]); err != nil {
		return nil, err
	}
	if proof.B, err = ScalarFromBytes(data[ScalarSize:]); err != nil {
		return nil, err
	}
	return proof, nil
}
