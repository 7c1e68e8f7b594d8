package ecdsasig_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/scalar"
)

func fixedScalar(t *testing.T) scalar.Scalar {
	t.Helper()
	b, err := hex.DecodeString(strings.Repeat("00", 31) + "01")
	require.NoError(t, err)
	s, err := scalar.FromCanonicalBytes(b)
	require.NoError(t, err)
	return s
}

// Scalar d=1, digest = Keccak-256("hello"); the RFC 6979 signature
// must be byte-exact across independent recomputation.
func TestSignDigestIsDeterministic(t *testing.T) {
	d := fixedScalar(t)
	digest := ecdsasig.Keccak256([]byte("hello"))

	sig1, err := ecdsasig.SignDigest(digest, d)
	require.NoError(t, err)
	sig2, err := ecdsasig.SignDigest(digest, d)
	require.NoError(t, err)

	assert.Equal(t, sig1.Bytes(), sig2.Bytes())
}

// Low-S always holds.
func TestSignatureIsLowS(t *testing.T) {
	d := fixedScalar(t)
	digest := ecdsasig.Keccak256([]byte("another message"))

	sig, err := ecdsasig.SignDigest(digest, d)
	require.NoError(t, err)

	halfOrder, err := hex.DecodeString("7fffffffffffffffffffffffffffffff5d576e7357a4501ddfe92f46681b20a0")
	require.NoError(t, err)
	assert.LessOrEqual(t, bytes.Compare(sig.S.Bytes(), halfOrder), 0)
	assert.True(t, sig.V == 0 || sig.V == 1)
}

// Verify and recover round-trip for every generated signature.
func TestVerifyAndRecoverRoundTrip(t *testing.T) {
	d := fixedScalar(t)
	pub := ecdsasig.PublicKeyFromScalar(d)
	digest := ecdsasig.Keccak256([]byte("round trip message"))

	sig, err := ecdsasig.SignDigest(digest, d)
	require.NoError(t, err)

	assert.True(t, ecdsasig.Verify(digest, sig, pub))

	recovered, err := ecdsasig.Recover(digest, sig)
	require.NoError(t, err)
	assert.True(t, recovered.IsEqual(pub))
}

func TestAddressIsDeterministicAndPrefixed(t *testing.T) {
	d := fixedScalar(t)
	pub := ecdsasig.PublicKeyFromScalar(d)

	addr1 := ecdsasig.Address(pub)
	addr2 := ecdsasig.Address(pub)

	assert.Equal(t, addr1, addr2)
	assert.True(t, strings.HasPrefix(addr1, "0x"))
	assert.Len(t, addr1, 42)
}

func TestSignPersonalFramingAndRecoveryOffset(t *testing.T) {
	d := fixedScalar(t)
	payload := []byte("a message to sign")

	sig, err := ecdsasig.SignPersonal(payload, d)
	require.NoError(t, err)
	assert.True(t, sig.V == 27 || sig.V == 28)
}

func TestSignTypedFraming(t *testing.T) {
	d := fixedScalar(t)
	var domainSep, structHash [32]byte
	copy(domainSep[:], ecdsasig.Keccak256([]byte("domain")))
	copy(structHash[:], ecdsasig.Keccak256([]byte("struct")))

	sig, err := ecdsasig.SignTyped(domainSep, structHash, d)
	require.NoError(t, err)
	assert.True(t, sig.V == 0 || sig.V == 1)
}

func TestSignTransactionEIP155RecoveryID(t *testing.T) {
	d := fixedScalar(t)
	tx := ecdsasig.Transaction{
		Nonce:    0,
		GasPrice: []byte{0x04, 0xA8, 0x17, 0xC8, 0x00},
		GasLimit: 21000,
		To:       make([]byte, 20),
		Value:    []byte{0x0D, 0xE0, 0xB6, 0xB3, 0xA7, 0x64, 0x00, 0x00},
		Data:     nil,
		ChainID:  1,
	}

	sig, err := ecdsasig.SignTransaction(tx, d)
	require.NoError(t, err)
	assert.True(t, sig.V == 37 || sig.V == 38)
}
