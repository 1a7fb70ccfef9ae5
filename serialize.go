package kvac

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

// Fixed-width byte encodings for everything that crosses the transport
// boundary. Scalars and compressed points are 32 bytes each; composite
// encodings are plain concatenations.

// ToBytes serializes the responses followed by the challenge.
func (proof *ZKP) ToBytes() []byte {
	var buf []byte
	for _, r := range proof.Responses {
		buf = append(buf, r.Bytes()...)
	}
	buf = append(buf, proof.Challenge.Bytes()...)
	return buf
}

// ZKPFromBytes decodes a proof with the given number of responses.
func ZKPFromBytes(data []byte) (*ZKP, error) {
	if len(data) < 2*ScalarSize || len(data)%ScalarSize != 0 {
		return nil, fmt.Errorf("zkp: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	count := len(data)/ScalarSize - 1
	proof := &ZKP{Responses: make([]*ristretto.Scalar, count)}
	var err error
	for i := 0; i < count; i++ {
		if proof.Responses[i], err = ScalarFromBytes(data[i*ScalarSize : (i+1)*ScalarSize]); err != nil {
			return nil, err
		}
	}
	if proof.Challenge, err = ScalarFromBytes(data[count*ScalarSize:]); err != nil {
		return nil, err
	}
	return proof, nil
}

// ToBytes serializes T then V.
func (mac *MAC) ToBytes() []byte {
	return append(mac.T.Bytes(), mac.V.Bytes()...)
}

func MACFromBytes(data []byte) (*MAC, error) {
	if len(data) != ScalarSize+PointSize {
		return nil, fmt.Errorf("mac: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	t, err := ScalarFromBytes(data[:ScalarSize])
	if err != nil {
		return nil, err
	}
	v, err := PointFromBytes(data[ScalarSize:])
	if err != nil {
		return nil, err
	}
	return &MAC{T: t, V: v}, nil
}

// ToBytes serializes the five terms as Ca, Cs, Cx0, Cx1, Cv.
func (rc *RandomizedCoin) ToBytes() []byte {
	var buf []byte
	for _, p := range []*ristretto.Point{rc.Ca, rc.Cs, rc.Cx0, rc.Cx1, rc.Cv} {
		buf = append(buf, p.Bytes()...)
	}
	return buf
}

func RandomizedCoinFromBytes(data []byte) (*RandomizedCoin, error) {
	if len(data) != 5*PointSize {
		return nil, fmt.Errorf("randomized coin: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	points := make([]*ristretto.Point, 5)
	var err error
	for i := range points {
		if points[i], err = PointFromBytes(data[i*PointSize : (i+1)*PointSize]); err != nil {
			return nil, err
		}
	}
	return &RandomizedCoin{Ca: points[0], Cs: points[1], Cx0: points[2], Cx1: points[3], Cv: points[4]}, nil
}

// ToBytes serializes Cw then I.
func (pub *MintPublicKey) ToBytes() []byte {
	return append(pub.Cw.Bytes(), pub.I.Bytes()...)
}

func MintPublicKeyFromBytes(data []byte) (*MintPublicKey, error) {
	if len(data) != 2*PointSize {
		return nil, fmt.Errorf("mint public key: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	cw, err := PointFromBytes(data[:PointSize])
	if err != nil {
		return nil, err
	}
	i, err := PointFromBytes(data[PointSize:])
	if err != nil {
		return nil, err
	}
	return &MintPublicKey{Cw: cw, I: i}, nil
}

// ToBytes serializes the six key scalars in fixed order. The encoding is
// for issuer-local persistence only and must never leave the issuer.
func (k *MintPrivateKey) ToBytes() []byte {
	var buf []byte
	for _, s := range []*ristretto.Scalar{k.W, k.Wprime, k.X0, k.X1, k.Ya, k.Ys} {
		buf = append(buf, s.Bytes()...)
	}
	return buf
}

func MintPrivateKeyFromBytes(data []byte) (*MintPrivateKey, error) {
	if len(data) != 6*ScalarSize {
		return nil, fmt.Errorf("mint private key: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	components := make([]*ristretto.Scalar, 6)
	var err error
	for i := range components {
		if components[i], err = ScalarFromBytes(data[i*ScalarSize : (i+1)*ScalarSize]); err != nil {
			return nil, err
		}
	}
	key := &MintPrivateKey{
		W:      components[0],
		Wprime: components[1],
		X0:     components[2],
		X1:     components[3],
		Ya:     components[4],
		Ys:     components[5],
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

// ToBytes serializes A, S, T1, T2, the three revealed scalars, then the
// inner-product argument.
func (proof *RangeProof) ToBytes() []byte {
	var buf []byte
	buf = append(buf, proof.A.Bytes()...)
	buf = append(buf, proof.S.Bytes()...)
	buf = append(buf, proof.T1.Bytes()...)
	buf = append(buf, proof.T2.Bytes()...)
	buf = append(buf, proof.TX.Bytes()...)
	buf = append(buf, proof.TXBlinding.Bytes()...)
	buf = append(buf, proof.EBlinding.Bytes()...)
	buf = append(buf, proof.IPP.ToBytes()...)
	return buf
}

func RangeProofFromBytes(data []byte) (*RangeProof, error) {
	head := 4*PointSize + 3*ScalarSize
	if len(data) < head+2*ScalarSize {
		return nil, fmt.Errorf("range proof: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	rest := len(data) - head - 2*ScalarSize
	if rest%(2*PointSize) != 0 {
		return nil, fmt.Errorf("range proof: bad length %d: %w", len(data), ErrMalformedEncoding)
	}
	rounds := rest / (2 * PointSize)

	proof := &RangeProof{}
	fields := []**ristretto.Point{&proof.A, &proof.S, &proof.T1, &proof.T2}
	var err error
	for _, f := range fields {
		if *f, err = PointFromBytes(data[:PointSize]); err != nil {
			return nil, err
		}
		data = data[PointSize:]
	}
	scalars := []**ristretto.Scalar{&proof.TX, &proof.TXBlinding, &proof.EBlinding}
	for _, f := range scalars {
		if *f, err = ScalarFromBytes(data[:ScalarSize]); err != nil {
			return nil, err
		}
		data = data[ScalarSize:]
	}
	if proof.IPP, err = innerProductProofFromBytes(data, rounds); err != nil {
		return nil, err
	}
	return proof, nil
}
