package kvac

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// Equation is one discrete-log relation of a Statement: LHS equals the sum
// over secrets of secret_i times the sum of the points in RHS[i]. RHS has
// one row per statement secret; nil rows mark secrets absent from this
// equation.
type Equation struct {
	LHS *ristretto.Point
	RHS [][]*ristretto.Point
}

// Statement is a set of relations proven atomically under one challenge.
type Statement struct {
	Domain    string
	Equations []Equation
}

// ZKP is a non-interactive proof of knowledge of a Statement's secrets.
type ZKP struct {
	Responses []*ristretto.Scalar
	Challenge *ristretto.Scalar
}

func rowCommit(row []*ristretto.Point, s *ristretto.Scalar) *ristretto.Point {
	var sum ristretto.Point
	sum.SetZero()
	for _, p := range row {
		sum.Add(&sum, p)
	}
	return sum.ScalarMult(&sum, s)
}

// ProveStatement runs the commit-challenge-response protocol over the
// transcript. The secret order must match the statement's RHS row order.
func ProveStatement(statement Statement, secrets []*ristretto.Scalar, t *merlin.Transcript) (*ZKP, error) {
	if len(statement.Equations) == 0 || len(secrets) == 0 {
		return nil, ErrEmptyInput
	}
	for i, eq := range statement.Equations {
		if len(eq.RHS) != len(secrets) {
			return nil, fmt.Errorf("equation %d: %d rows for %d secrets: %w", i, len(eq.RHS), len(secrets), ErrProofInvalid)
		}
	}

	nonces := make([]*ristretto.Scalar, len(secrets))
	for i := range nonces {
		nonces[i] = randomScalar()
	}

	statementDomainSep(statement.Domain, t)
	for _, eq := range statement.Equations {
		var r ristretto.Point
		r.SetZero()
		for i, row := range eq.RHS {
			if row == nil {
				continue
			}
			r.Add(&r, rowCommit(row, nonces[i]))
		}
		appendPoint("R", &r, t)
		appendPoint("V", eq.LHS, t)
	}
	c := challengeScalar("c", t)

	responses := make([]*ristretto.Scalar, len(secrets))
	for i := range secrets {
		var s ristretto.Scalar
		s.Mul(c, secrets[i])
		responses[i] = s.Add(&s, nonces[i])
	}
	return &ZKP{Responses: responses, Challenge: c}, nil
}

// VerifyStatement recomputes each equation's commitment term from the
// responses and the shared challenge, replays the transcript, and accepts
// iff the re-derived challenge matches.
func VerifyStatement(statement Statement, proof *ZKP, t *merlin.Transcript) bool {
	if proof == nil || proof.Challenge == nil || len(proof.Responses) == 0 {
		return false
	}
	if len(statement.Equations) == 0 {
		return false
	}
	for _, eq := range statement.Equations {
		if len(eq.RHS) != len(proof.Responses) {
			return false
		}
	}

	statementDomainSep(statement.Domain, t)
	for _, eq := range statement.Equations {
		var r, cl ristretto.Point
		r.SetZero()
		for i, row := range eq.RHS {
			if row == nil {
				continue
			}
			r.Add(&r, rowCommit(row, proof.Responses[i]))
		}
		cl.ScalarMult(eq.LHS, proof.Challenge)
		r.Sub(&r, &cl)
		appendPoint("R", &r, t)
		appendPoint("V", eq.LHS, t)
	}
	c := challengeScalar("c", t)
	return c.Equals(proof.Challenge)
}
