package kvac

import "errors"

var (
	// ErrMalformedEncoding is returned when a byte string has the wrong
	// length, encodes an out-of-range scalar, or is not a valid point.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrInvalidSecretKey is returned when a mint private key component is
	// zero.
	ErrInvalidSecretKey = errors.New("invalid secret key")

	// ErrEmptyInput is returned when a coin or attribute list is empty but
	// at least one element is required.
	ErrEmptyInput = errors.New("empty input")

	// ErrMissingScript is returned when a script operation is requested on
	// a coin that carries no script attribute.
	ErrMissingScript = errors.New("missing script attribute")

	// ErrProofInvalid is returned when a challenge or polynomial identity
	// does not hold, or when a proof's encoded lengths are inconsistent.
	ErrProofInvalid = errors.New("proof invalid")

	// ErrRangeViolation is returned at proof construction time for amounts
	// at or above 2^AmountBits.
	ErrRangeViolation = errors.New("amount out of range")
)
