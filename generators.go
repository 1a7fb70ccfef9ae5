package kvac

import (
	"sync"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"
)

const (
	HASH_TO_POINT_DOMAIN_TAG   = "kvac_hash_to_point"
	GENERATORS_DOMAIN_TAG      = "kvac_role_generator"
	SCRIPT_HASH_DOMAIN_TAG     = "kvac_script_hash"
	MINT_KEY_DOMAIN_TAG        = "kvac_mint_key"
	BOOTSTRAP_DOMAIN_TAG       = "kvac_bootstrap_v1"
	ISSUANCE_DOMAIN_TAG        = "kvac_issuance_v1"
	MAC_DOMAIN_TAG             = "kvac_mac_v1"
	BALANCE_DOMAIN_TAG         = "kvac_balance_v1"
	SCRIPT_EQUALITY_DOMAIN_TAG = "kvac_script_equality_v1"
	RANGE_PROOF_DOMAIN_TAG     = "kvac_range_proof_v1"
)

const (
	// AmountBits is the fixed bit width of a range-proven amount.
	AmountBits = 32
	// MaxAggregation is the largest number of attributes batched into one
	// range proof.
	MaxAggregation = 16
)

// Generators is the process-wide table of fixed generator points. Every
// generator has an independent role and no known discrete log relation to
// any other.
type Generators struct {
	// Attribute roles.
	Gamount *ristretto.Point
	Gblind  *ristretto.Point
	Gscript *ristretto.Point

	// Randomization roles.
	GzMac    *ristretto.Point
	GzAmount *ristretto.Point
	GzScript *ristretto.Point

	// Issuer key roles.
	W      *ristretto.Point
	Wprime *ristretto.Point
	X0     *ristretto.Point
	X1     *ristretto.Point

	// Range-proof vector generators, AmountBits*MaxAggregation each,
	// laid out party-major: index j*AmountBits+k is party j, bit k.
	BpG []*ristretto.Point
	BpH []*ristretto.Point
}

var (
	gensOnce sync.Once
	gens     *Generators
)

// Gens returns the generator table, building it deterministically on first
// use. The table is never mutated afterwards.
func Gens() *Generators {
	gensOnce.Do(func() {
		gens = &Generators{
			Gamount:  roleGenerator("G_amount"),
			Gblind:   roleGenerator("G_blind"),
			Gscript:  roleGenerator("G_script"),
			GzMac:    roleGenerator("Gz_mac"),
			GzAmount: roleGenerator("Gz_amount"),
			GzScript: roleGenerator("Gz_script"),
			W:        roleGenerator("W"),
			Wprime:   roleGenerator("W_prime"),
			X0:       roleGenerator("X0"),
			X1:       roleGenerator("X1"),
			BpG:      generatorVector("G", AmountBits, MaxAggregation),
			BpH:      generatorVector("H", AmountBits, MaxAggregation),
		}
	})
	return gens
}

func roleGenerator(role string) *ristretto.Point {
	return hashToPoint(GENERATORS_DOMAIN_TAG, []byte(role))
}

func generatorVector(label string, n, m int) []*ristretto.Point {
	out := make([]*ristretto.Point, 0, n*m)
	for j := 0; j < m; j++ {
		chain := newGeneratorsChain(label, uint32(j))
		for k := 0; k < n; k++ {
			out = append(out, chain.Next())
		}
	}
	return out
}

type generatorsChain struct {
	sha3.ShakeHash
}

func newGeneratorsChain(label string, party uint32) *generatorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write([]byte(label))
	h.Write([]byte{byte(party), byte(party >> 8), byte(party >> 16), byte(party >> 24)})
	return &generatorsChain{h}
}

func (c *generatorsChain) Next() *ristretto.Point {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}
