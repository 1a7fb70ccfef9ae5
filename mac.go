package kvac

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

// MintPrivateKey is the issuer's six-component secret key. It never leaves
// the issuer.
type MintPrivateKey struct {
	W      *ristretto.Scalar
	Wprime *ristretto.Scalar
	X0     *ristretto.Scalar
	X1     *ristretto.Scalar
	Ya     *ristretto.Scalar
	Ys     *ristretto.Scalar
}

// NewMintPrivateKey samples a fresh private key.
func NewMintPrivateKey() *MintPrivateKey {
	return &MintPrivateKey{
		W:      randomScalar(),
		Wprime: randomScalar(),
		X0:     randomScalar(),
		X1:     randomScalar(),
		Ya:     randomScalar(),
		Ys:     randomScalar(),
	}
}

// MintPrivateKeyFromSeed derives the six key scalars deterministically from
// a seed.
func MintPrivateKeyFromSeed(seed []byte) (*MintPrivateKey, error) {
	components := make([]*ristretto.Scalar, 6)
	for i := range components {
		hash := blake2b.New512()
		hash.Write([]byte(MINT_KEY_DOMAIN_TAG))
		hash.Write([]byte{byte(i)})
		hash.Write(seed)
		var wide [64]byte
		copy(wide[:], hash.Sum(nil))
		var s ristretto.Scalar
		components[i] = s.SetReduced(&wide)
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

// Validate rejects keys with a zero component.
func (k *MintPrivateKey) Validate() error {
	var zero ristretto.Scalar
	zero.SetZero()
	for i, s := range []*ristretto.Scalar{k.W, k.Wprime, k.X0, k.X1, k.Ya, k.Ys} {
		if s == nil || zero.Equals(s) {
			return fmt.Errorf("component %d: %w", i, ErrInvalidSecretKey)
		}
	}
	return nil
}

// Public derives the published key:
//
//	Cw = w*W + w'*Wprime
//	I  = GzMac - (x0*X0 + x1*X1 + ya*GzAmount + ys*GzScript)
func (k *MintPrivateKey) Public() *MintPublicKey {
	g := Gens()
	var i ristretto.Point
	i.Sub(g.GzMac, multiscalarMul(
		[]*ristretto.Scalar{k.X0, k.X1, k.Ya, k.Ys},
		[]*ristretto.Point{g.X0, g.X1, g.GzAmount, g.GzScript},
	))
	return &MintPublicKey{
		Cw: multiscalarMul(
			[]*ristretto.Scalar{k.W, k.Wprime},
			[]*ristretto.Point{g.W, g.Wprime},
		),
		I: &i,
	}
}

// MintPublicKey is the issuer's published key.
type MintPublicKey struct {
	Cw *ristretto.Point
	I  *ristretto.Point
}

// MAC is an issuer-keyed tag over a coin's commitments. T is sampled at
// issuance; V = w*W + x0*U + x1*t*U + ya*Ma + ys*Ms with U = HashToPoint(t).
type MAC struct {
	T *ristretto.Scalar
	V *ristretto.Point
}

// tagPoint maps a MAC tag into the group.
func tagPoint(t *ristretto.Scalar) *ristretto.Point {
	return hashToPoint(HASH_TO_POINT_DOMAIN_TAG, t.Bytes())
}

// generateMAC tags the commitment pair (Ma, Ms) under the private key.
// ms may be nil for scriptless coins.
func generateMAC(k *MintPrivateKey, ma, ms *ristretto.Point) *MAC {
	g := Gens()
	t := randomScalar()
	u := tagPoint(t)
	if ms == nil {
		var id ristretto.Point
		ms = id.SetZero()
	}
	var tu ristretto.Scalar
	v := multiscalarMul(
		[]*ristretto.Scalar{k.W, k.X0, tu.Mul(t, k.X1), k.Ya, k.Ys},
		[]*ristretto.Point{g.W, u, u, ma, ms},
	)
	return &MAC{T: t, V: v}
}

// Coin is the unit the client holds: attribute openings plus the issuer's
// MAC over their commitments. Script is optional.
type Coin struct {
	Amount *AmountAttribute
	Script *ScriptAttribute
	Mac    *MAC
}

// RandomizedCoin is an unlinkable presentation of a Coin, derived from one
// fresh blinding scalar used consistently across all five terms.
type RandomizedCoin struct {
	Ca  *ristretto.Point
	Cs  *ristretto.Point
	Cx0 *ristretto.Point
	Cx1 *ristretto.Point
	Cv  *ristretto.Point
}

// RandomizeCoin derives a fresh presentation of coin and returns the
// blinding scalar the proofs over it need. Cs always carries the coin's
// script commitment under the fresh blinding, so the presentation stays
// valid whether or not the spend goes on to prove anything about the
// script. revealScript asserts the caller intends to, and errors when the
// coin has no script to prove over.
func RandomizeCoin(coin *Coin, revealScript bool) (*RandomizedCoin, *ristretto.Scalar, error) {
	if revealScript && coin.Script == nil {
		return nil, nil, ErrMissingScript
	}
	g := Gens()
	ra := randomScalar()
	u := tagPoint(coin.Mac.T)

	var cx0, cx1, ca, cv, cs ristretto.Point
	cx0.ScalarMult(g.X0, ra)
	cx0.Add(&cx0, u)

	var tu ristretto.Point
	cx1.ScalarMult(g.X1, ra)
	cx1.Add(&cx1, tu.ScalarMult(u, coin.Mac.T))

	ca.ScalarMult(g.GzAmount, ra)
	ca.Add(&ca, coin.Amount.Commitment())

	cv.ScalarMult(g.GzMac, ra)
	cv.Add(&cv, coin.Mac.V)

	cs.ScalarMult(g.GzScript, ra)
	if coin.Script != nil {
		cs.Add(&cs, coin.Script.Commitment())
	}

	return &RandomizedCoin{Ca: &ca, Cs: &cs, Cx0: &cx0, Cx1: &cx1, Cv: &cv}, ra, nil
}
