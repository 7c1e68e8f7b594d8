package scalar_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/vault-core/pkg/scalar"
)

func TestFromCanonicalBytesRejectsZeroAndOverflow(t *testing.T) {
	zero := make([]byte, 32)
	_, err := scalar.FromCanonicalBytes(zero)
	assert.ErrorIs(t, err, scalar.ErrInvalidScalar)

	// n itself is out of range.
	n, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	require.NoError(t, err)
	_, err = scalar.FromCanonicalBytes(n)
	assert.ErrorIs(t, err, scalar.ErrInvalidScalar)

	// n-1 is the largest valid scalar.
	nMinusOne, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140")
	require.NoError(t, err)
	s, err := scalar.FromCanonicalBytes(nMinusOne)
	require.NoError(t, err)
	assert.Equal(t, nMinusOne, s.Bytes())

	_, err = scalar.FromCanonicalBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, scalar.ErrInvalidScalar)
}

func TestArithmeticIdentities(t *testing.T) {
	a, err := scalar.RandomScalar()
	require.NoError(t, err)
	b, err := scalar.RandomScalar()
	require.NoError(t, err)

	assert.True(t, a.Add(b).Sub(b).Equal(a))
	assert.True(t, a.Add(a.Negate()).IsZero())
	assert.True(t, a.Mul(scalar.FromUint64(1)).Equal(a))
	assert.True(t, a.Mul(scalar.New()).IsZero())
}

func TestExp(t *testing.T) {
	two := scalar.FromUint64(2)
	assert.True(t, two.Exp(scalar.FromUint64(10)).Equal(scalar.FromUint64(1024)))
	assert.True(t, two.Exp(scalar.New()).Equal(scalar.FromUint64(1)))
}

func TestFermatInverse(t *testing.T) {
	one := scalar.FromUint64(1)

	for _, v := range []uint64{1, 2, 3, 255, 65537} {
		s := scalar.FromUint64(v)
		assert.True(t, s.Mul(s.FermatInverse()).Equal(one), "inverse of %d", v)
	}

	r, err := scalar.RandomScalar()
	require.NoError(t, err)
	assert.True(t, r.Mul(r.FermatInverse()).Equal(one))
}

func TestBytesRoundTrip(t *testing.T) {
	want, err := hex.DecodeString(strings.Repeat("0123456789abcdef", 4))
	require.NoError(t, err)

	s, err := scalar.FromCanonicalBytes(want)
	require.NoError(t, err)
	assert.Equal(t, want, s.Bytes())

	var s2 scalar.Scalar
	require.NoError(t, s2.UnmarshalBinary(want))
	assert.True(t, s2.Equal(s))
}

func TestRandomRejectsUntilInRange(t *testing.T) {
	// The reader first yields all-0xFF (>= n, rejected), then all zeros
	// (rejected), then a valid value.
	reads := [][]byte{
		bytes.Repeat([]byte{0xFF}, 32),
		make([]byte, 32),
		append(make([]byte, 31), 0x07),
	}
	rd := &scriptedReader{reads: reads}

	s, err := scalar.Random(rd)
	require.NoError(t, err)
	assert.True(t, s.Equal(scalar.FromUint64(7)))
	assert.Equal(t, 3, rd.calls)
}

func TestRandomScalarsDiffer(t *testing.T) {
	a, err := scalar.RandomScalar()
	require.NoError(t, err)
	b, err := scalar.RandomScalar()
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
}

type scriptedReader struct {
	reads [][]byte
	calls int
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	copy(p, r.reads[r.calls])
	r.calls++
	return len(p), nil
}
