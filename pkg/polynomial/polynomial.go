// Package polynomial implements polynomials over GF(n) and Lagrange
// interpolation at zero, the shared machinery behind Shamir splitting
// (pkg/shamir) and secret reconstruction (wallet/mpcwallet,
// wallet/recovery).
package polynomial

import (
	"io"

	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/scalar"
)

// Polynomial is f(X) = coeffs[0] + coeffs[1]*X + ... + coeffs[d]*X^d.
type Polynomial struct {
	coeffs []scalar.Scalar
}

// New builds a degree-d polynomial with coeffs[0] pinned to constant and
// the remaining d coefficients drawn uniformly at random from rnd.
// Split (pkg/shamir) uses the pinned constant term to place the secret
// at f(0).
func New(degree int, constant scalar.Scalar, rnd io.Reader) (*Polynomial, error) {
	coeffs := make([]scalar.Scalar, degree+1)
	coeffs[0] = constant
	for i := 1; i <= degree; i++ {
		c, err := scalar.Random(rnd)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}
	return &Polynomial{coeffs: coeffs}, nil
}

// Constant returns f(0).
func (p *Polynomial) Constant() scalar.Scalar {
	return p.coeffs[0]
}

// Evaluate computes f(x) via Horner's method.
func (p *Polynomial) Evaluate(x party.ShareIndex) scalar.Scalar {
	xs := scalar.FromUint64(uint64(x))
	acc := scalar.New()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(xs).Add(p.coeffs[i])
	}
	return acc
}

// Lagrange computes, for each x in xs, the coefficient c_x such that
//
//	secret = sum_x c_x * f(x)
//
// i.e. the Lagrange basis polynomials evaluated at 0:
//
//	c_i = prod_{j != i} (-x_j) / (x_i - x_j)
func Lagrange(xs []party.ShareIndex) map[party.ShareIndex]scalar.Scalar {
	out := make(map[party.ShareIndex]scalar.Scalar, len(xs))
	for _, xi := range xs {
		xiS := scalar.FromUint64(uint64(xi))
		num := scalar.FromUint64(1)
		den := scalar.FromUint64(1)
		for _, xj := range xs {
			if xj == xi {
				continue
			}
			xjS := scalar.FromUint64(uint64(xj))
			num = num.Mul(xjS.Negate())
			den = den.Mul(xiS.Sub(xjS))
		}
		out[xi] = num.Mul(den.FermatInverse())
	}
	return out
}
