// Package scalar implements modular arithmetic over the secp256k1 group
// order n, the field every other component in this module (Shamir
// sharing, ECDSA signing, recovery) builds on.
package scalar

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidScalar is returned when a byte string decodes to zero or to a
// value greater than or equal to the group order n.
var ErrInvalidScalar = errors.New("scalar: value is zero or >= group order")

// ByteLen is the canonical big-endian serialized length of a Scalar.
const ByteLen = 32

// Scalar is an element of GF(n) where n is the secp256k1 group order
//
//	n = 0xFFFFFFFF FFFFFFFF FFFFFFFF FFFFFFFE BAAEDCE6 AF48A03B BFD25E8C D0364141
//
// The zero value is the scalar 0, a valid field element even though it
// can never be a valid share value or private key.
type Scalar struct {
	inner secp256k1.ModNScalar
}

// New returns the zero scalar.
func New() Scalar {
	return Scalar{}
}

// FromUint64 builds a small scalar, handy in tests and for share
// indices that are combined with field elements.
func FromUint64(v uint64) Scalar {
	var s Scalar
	s.inner.SetInt(uint32(v))
	if v > uint64(^uint32(0)) {
		// SetInt only takes a uint32; the rare large literal goes
		// through byte decoding instead.
		var full [32]byte
		for i := 0; i < 8; i++ {
			full[31-i] = byte(v >> (8 * i))
		}
		s.inner.SetByteSlice(full[:])
	}
	return s
}

// SetBytes decodes 32 big-endian bytes, reducing modulo n as ModNScalar
// always does. It does not reject out-of-range encodings; use
// FromCanonicalBytes for that.
func SetBytes(b []byte) Scalar {
	var s Scalar
	s.inner.SetByteSlice(b)
	return s
}

// FromCanonicalBytes decodes 32 big-endian bytes and requires the result
// to be a nonzero scalar strictly less than n. ErrInvalidScalar covers
// both the zero and the out-of-range case.
func FromCanonicalBytes(b []byte) (Scalar, error) {
	if len(b) != ByteLen {
		return Scalar{}, ErrInvalidScalar
	}
	var s Scalar
	overflow := s.inner.SetByteSlice(b)
	if overflow || s.inner.IsZero() {
		return Scalar{}, ErrInvalidScalar
	}
	return s, nil
}

// Bytes returns the canonical 32-byte big-endian encoding.
func (s Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	out := make([]byte, ByteLen)
	copy(out, b[:])
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Scalar) MarshalBinary() ([]byte, error) {
	return s.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Scalar) UnmarshalBinary(b []byte) error {
	if len(b) != ByteLen {
		return ErrInvalidScalar
	}
	s.inner.SetByteSlice(b)
	return nil
}

// IsZero reports whether the scalar is the additive identity.
func (s Scalar) IsZero() bool {
	return s.inner.IsZero()
}

// Equal reports whether two scalars represent the same field element.
func (s Scalar) Equal(other Scalar) bool {
	return s.inner.Equals(&other.inner)
}

// Add returns s + other mod n.
func (s Scalar) Add(other Scalar) Scalar {
	var out Scalar
	out.inner.Set(&s.inner)
	out.inner.Add(&other.inner)
	return out
}

// Sub returns s - other mod n.
func (s Scalar) Sub(other Scalar) Scalar {
	var negOther secp256k1.ModNScalar
	negOther.Set(&other.inner).Negate()
	var out Scalar
	out.inner.Set(&s.inner)
	out.inner.Add(&negOther)
	return out
}

// Negate returns -s mod n.
func (s Scalar) Negate() Scalar {
	var out Scalar
	out.inner.Set(&s.inner).Negate()
	return out
}

// Mul returns s * other mod n.
func (s Scalar) Mul(other Scalar) Scalar {
	var out Scalar
	out.inner.Set(&s.inner)
	out.inner.Mul(&other.inner)
	return out
}

// Exp returns s^e mod n through saferith's constant-time modular
// exponentiation ladder.
func (s Scalar) Exp(e Scalar) Scalar {
	return s.expBytes(e.Bytes())
}

func (s Scalar) expBytes(exponent []byte) Scalar {
	x := new(saferith.Nat).SetBytes(s.Bytes())
	e := new(saferith.Nat).SetBytes(exponent)
	r := new(saferith.Nat).Exp(x, e, order)

	b := r.Bytes()
	var buf [ByteLen]byte
	copy(buf[ByteLen-len(b):], b)
	return SetBytes(buf[:])
}

// FermatInverse returns the multiplicative inverse of s modulo n,
// computed as s^(n-2) mod n through saferith's constant-time modular
// exponentiation, so the running time does not depend on the value
// being inverted. The name spells out the method so the constant-time
// property is visible at the call site.
//
// Returns the zero scalar, unchanged, if s is zero (0 has no inverse;
// callers that can receive an untrusted zero scalar must check IsZero
// themselves; this function never branches on the value).
func (s Scalar) FermatInverse() Scalar {
	return s.expBytes(orderMinusTwoBytes[:])
}

// Random samples a uniformly random nonzero scalar strictly less than n
// via rejection sampling on 32 random bytes.
func Random(rnd io.Reader) (Scalar, error) {
	var buf [ByteLen]byte
	for {
		if _, err := io.ReadFull(rnd, buf[:]); err != nil {
			return Scalar{}, err
		}
		s, err := FromCanonicalBytes(buf[:])
		if err == nil {
			return s, nil
		}
		// negligible-probability rejection (out of range or zero); retry.
	}
}

// RandomScalar is a convenience wrapper around Random using crypto/rand.
func RandomScalar() (Scalar, error) {
	return Random(rand.Reader)
}

// orderBytes is n, the secp256k1 group order, big-endian.
var orderBytes = [ByteLen]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
	0xBA, 0xAE, 0xDC, 0xE6, 0xAF, 0x48, 0xA0, 0x3B,
	0xBF, 0xD2, 0x5E, 0x8C, 0xD0, 0x36, 0x41, 0x41,
}

// orderMinusTwoBytes is n-2, the Fermat exponent.
var orderMinusTwoBytes = [ByteLen]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
	0xBA, 0xAE, 0xDC, 0xE6, 0xAF, 0x48, 0xA0, 0x3B,
	0xBF, 0xD2, 0x5E, 0x8C, 0xD0, 0x36, 0x41, 0x3F,
}

var order = saferith.ModulusFromBytes(orderBytes[:])
