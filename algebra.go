package kvac

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

const (
	// ScalarSize is the byte length of an encoded scalar.
	ScalarSize = 32
	// PointSize is the byte length of a compressed group element.
	PointSize = 32
)

// ScalarFromBytes decodes a 32-byte little-endian scalar. Encodings that do
// not round-trip (out-of-range values) are rejected.
func ScalarFromBytes(data []byte) (*ristretto.Scalar, error) {
	if len(data) != ScalarSize {
		return nil, fmt.Errorf("scalar: want %d bytes, got %d: %w", ScalarSize, len(data), ErrMalformedEncoding)
	}
	var buf [ScalarSize]byte
	copy(buf[:], data)
	var s ristretto.Scalar
	s.SetBytes(&buf)
	if !bytes.Equal(s.Bytes(), data) {
		return nil, fmt.Errorf("scalar: non-canonical encoding: %w", ErrMalformedEncoding)
	}
	return &s, nil
}

// ScalarToBytes returns the canonical 32-byte little-endian encoding.
func ScalarToBytes(s *ristretto.Scalar) []byte {
	return s.Bytes()
}

// PointFromBytes decodes a 32-byte compressed group element.
func PointFromBytes(data []byte) (*ristretto.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("point: want %d bytes, got %d: %w", PointSize, len(data), ErrMalformedEncoding)
	}
	var p ristretto.Point
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("point: %v: %w", err, ErrMalformedEncoding)
	}
	return &p, nil
}

// PointToBytes returns the 32-byte compressed encoding.
func PointToBytes(p *ristretto.Point) []byte {
	return p.Bytes()
}

func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

// int64ToScalar maps a signed delta into the scalar field.
func int64ToScalar(i int64) *ristretto.Scalar {
	if i >= 0 {
		return uint64ToScalar(uint64(i))
	}
	var s ristretto.Scalar
	return s.Neg(uint64ToScalar(uint64(-i)))
}

func randomScalar() *ristretto.Scalar {
	var s ristretto.Scalar
	return s.Rand()
}

func fromBytesModOrderWide(data []byte) *ristretto.Scalar {
	var data64 [64]byte
	copy(data64[:], data)
	var hs ristretto.Scalar
	return hs.SetReduced(&data64)
}

// hashToPoint maps arbitrary bytes to a group element with no known
// discrete log relationship to any other generator.
func hashToPoint(domain string, data []byte) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(domain))
	hash.Write(data)
	var key [64]byte
	copy(key[:], hash.Sum(nil))
	return pointFromUniformBytes(key[:])
}

func pointFromUniformBytes(key []byte) *ristretto.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}

func innerProduct(a []*ristretto.Scalar, b []*ristretto.Scalar) *ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	var zero ristretto.Scalar
	zero.SetZero()
	for i := range a {
		var r ristretto.Scalar
		zero.Add(&zero, r.Mul(a[i], b[i]))
	}
	return &zero
}

func addVec(a []*ristretto.Scalar, b []*ristretto.Scalar) []*ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	out := make([]*ristretto.Scalar, len(a))
	for i := range a {
		var r ristretto.Scalar
		out[i] = r.Add(a[i], b[i])
	}
	return out
}

func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
