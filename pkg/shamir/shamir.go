// Package shamir implements Shamir Secret Sharing over GF(n), the
// secp256k1 scalar field. Splitting builds a random
// degree-(threshold-1) polynomial with the secret as its constant term;
// combining reconstructs that constant term via Lagrange interpolation
// at zero.
package shamir

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/polynomial"
	"github.com/luxfi/vault-core/pkg/scalar"
)

var (
	// ErrTotalOutOfRange is returned when total is not in {2..255}.
	ErrTotalOutOfRange = errors.New("shamir: total shares must be between 2 and 255")
	// ErrThresholdOutOfRange is returned when threshold is not in {2..total}.
	ErrThresholdOutOfRange = errors.New("shamir: threshold must be between 2 and total")
	// ErrTooFewShares is returned when Combine is called with fewer than 2 shares.
	ErrTooFewShares = errors.New("shamir: need at least 2 shares to combine")
	// ErrDuplicateIndex is returned when two shares given to Combine share an x value.
	ErrDuplicateIndex = errors.New("shamir: duplicate share index")
	// ErrZeroIndex is returned for a share whose X is 0, which would reveal the secret.
	ErrZeroIndex = errors.New("shamir: share index 0 is forbidden")
)

// Share is a point (x, y) on the secret polynomial, x in {1..255}.
type Share struct {
	X party.ShareIndex
	Y scalar.Scalar
}

// Split generates `total` shares of `secret` such that any `threshold`
// of them reconstruct it via Combine. The secret may be the zero
// scalar; only the polynomial's higher coefficients are sampled at
// random.
func Split(secret scalar.Scalar, total, threshold int) ([]Share, error) {
	return SplitWithReader(rand.Reader, secret, total, threshold)
}

// SplitWithReader is Split with an injectable entropy source.
func SplitWithReader(rnd io.Reader, secret scalar.Scalar, total, threshold int) ([]Share, error) {
	if total < 2 || total > 255 {
		return nil, ErrTotalOutOfRange
	}
	if threshold < 2 || threshold > total {
		return nil, ErrThresholdOutOfRange
	}

	poly, err := polynomial.New(threshold-1, secret, rnd)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, total)
	for i := 0; i < total; i++ {
		x := party.ShareIndex(i + 1)
		shares[i] = Share{X: x, Y: poly.Evaluate(x)}
	}
	return shares, nil
}

// Combine reconstructs the secret from at least `threshold` shares of a
// consistent split, using Lagrange interpolation at 0. Any subset of
// size >= threshold from the same split returns the same value; a
// subset drawn from an inconsistent split, or of insufficient size,
// either fails or returns a value that is not the original secret.
func Combine(shares []Share) (scalar.Scalar, error) {
	if len(shares) < 2 {
		return scalar.Scalar{}, ErrTooFewShares
	}

	xs := make([]party.ShareIndex, len(shares))
	seen := make(map[party.ShareIndex]bool, len(shares))
	for i, s := range shares {
		if s.X == 0 {
			return scalar.Scalar{}, ErrZeroIndex
		}
		if seen[s.X] {
			return scalar.Scalar{}, ErrDuplicateIndex
		}
		seen[s.X] = true
		xs[i] = s.X
	}

	coeffs := polynomial.Lagrange(xs)

	result := scalar.New()
	for _, s := range shares {
		result = result.Add(coeffs[s.X].Mul(s.Y))
	}
	return result, nil
}
