package kvac

import "github.com/bwesterb/go-ristretto"

// scalarExp yields successive powers of x starting at x^0.
type scalarExp struct {
	x    *ristretto.Scalar
	next *ristretto.Scalar
}

func newScalarExp(x *ristretto.Scalar) *scalarExp {
	var one ristretto.Scalar
	return &scalarExp{x: x, next: one.SetOne()}
}

func (s *scalarExp) Next() *ristretto.Scalar {
	var out ristretto.Scalar
	out.Add(&out, s.next)
	s.next.Mul(s.next, s.x)
	return &out
}

// vecPoly1 is a vector of degree-1 polynomials a + b*X.
type vecPoly1 struct {
	a []*ristretto.Scalar
	b []*ristretto.Scalar
}

func zeroVecPoly1(n int) *vecPoly1 {
	v := &vecPoly1{a: make([]*ristretto.Scalar, n), b: make([]*ristretto.Scalar, n)}
	for i := 0; i < n; i++ {
		var r1, r2 ristretto.Scalar
		r1.SetZero()
		r2.SetZero()
		v.a[i] = &r1
		v.b[i] = &r2
	}
	return v
}

// InnerProduct computes <l(X), r(X)> as a degree-2 polynomial, using the
// t1 = <l0+l1, r0+r1> - t0 - t2 identity to skip one convolution.
func (v *vecPoly1) InnerProduct(rhs *vecPoly1) *poly2 {
	t0 := innerProduct(v.a, rhs.a)
	t2 := innerProduct(v.b, rhs.b)

	var t1 ristretto.Scalar
	t1.Sub(innerProduct(addVec(v.a, v.b), addVec(rhs.a, rhs.b)), t0)
	t1.Sub(&t1, t2)

	return &poly2{a: t0, b: &t1, c: t2}
}

func (v *vecPoly1) Eval(x *ristretto.Scalar) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, len(v.a))
	for i := range v.a {
		var r ristretto.Scalar
		r.Mul(v.b[i], x)
		out[i] = r.Add(v.a[i], &r)
	}
	return out
}

// poly2 is a degree-2 polynomial a + b*X + c*X².
type poly2 struct {
	a *ristretto.Scalar
	b *ristretto.Scalar
	c *ristretto.Scalar
}

func (p *poly2) Eval(x *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.Mul(x, p.c)
	r.Add(p.b, &r)
	r.Mul(x, &r)
	return r.Add(p.a, &r)
}

// scalarExpVartime computes x^n by square and multiply.
func scalarExpVartime(x *ristretto.Scalar, n uint64) *ristretto.Scalar {
	var result, aux ristretto.Scalar
	result.SetOne()
	aux.SetZero()
	aux.Add(&aux, x)

	for n > 0 {
		if n&1 == 1 {
			result.Mul(&result, &aux)
		}
		n >>= 1
		aux.Mul(&aux, &aux)
	}
	return &result
}
