package mpcwallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/scalar"
	"github.com/luxfi/vault-core/wallet/mpcwallet"
)

func passwords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "p" + string(rune('1'+i))
	}
	return out
}

// Create a 3-of-5 wallet, load state, add shares 1, 3 and 5 with the
// correct passwords, sign, and recover the public key from the
// signature.
func TestThresholdSigningHappyPath(t *testing.T) {
	cfg := mpcwallet.ShareConfig{TotalShares: 5, Threshold: 3}
	pw := passwords(5)

	result, err := mpcwallet.Create(cfg, pw)
	require.NoError(t, err)
	require.Len(t, result.Sealed, 5)
	require.Len(t, result.PlainShares, 5)

	w := mpcwallet.LoadState(result.State)
	for _, idx := range []int{0, 2, 4} { // shares 1, 3, 5
		ok, err := w.AddShare(result.Sealed[idx], pw[idx])
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.True(t, w.CanSign())

	sig, err := w.SignMessage([]byte("hi"))
	require.NoError(t, err)

	digest := ecdsasig.Keccak256([]byte("\x19Ethereum Signed Message:\n2hi"))
	recovered, err := ecdsasig.Recover(digest, ecdsasig.Signature{R: sig.R, S: sig.S, V: sig.V - 27})
	require.NoError(t, err)
	assert.True(t, recovered.IsEqual(result.State.PublicKey))

	assert.False(t, w.CanSign(), "collected_shares must be cleared after signing")
}

func TestCreateRejectsBadConfig(t *testing.T) {
	_, err := mpcwallet.Create(mpcwallet.ShareConfig{TotalShares: 5, Threshold: 1}, passwords(5))
	assert.ErrorIs(t, err, mpcwallet.ErrConfigInvalid)

	_, err = mpcwallet.Create(mpcwallet.ShareConfig{TotalShares: 3, Threshold: 5}, passwords(3))
	assert.ErrorIs(t, err, mpcwallet.ErrConfigInvalid)
}

func TestCreateRejectsPasswordCountMismatch(t *testing.T) {
	_, err := mpcwallet.Create(mpcwallet.ShareConfig{TotalShares: 5, Threshold: 3}, passwords(4))
	assert.ErrorIs(t, err, mpcwallet.ErrPasswordCountMismatch)
}

func TestAddShareRejectsAlreadyCollected(t *testing.T) {
	cfg := mpcwallet.ShareConfig{TotalShares: 3, Threshold: 2}
	pw := passwords(3)
	result, err := mpcwallet.Create(cfg, pw)
	require.NoError(t, err)

	w := mpcwallet.LoadState(result.State)
	ok, err := w.AddShare(result.Sealed[0], pw[0])
	require.NoError(t, err)
	require.True(t, ok)

	_, err = w.AddShare(result.Sealed[0], pw[0])
	assert.ErrorIs(t, err, mpcwallet.ErrAlreadyCollected)
}

func TestAddShareRejectsWrongWallet(t *testing.T) {
	cfg := mpcwallet.ShareConfig{TotalShares: 3, Threshold: 2}
	result1, err := mpcwallet.Create(cfg, passwords(3))
	require.NoError(t, err)
	result2, err := mpcwallet.Create(cfg, passwords(3))
	require.NoError(t, err)

	w := mpcwallet.LoadState(result1.State)
	_, err = w.AddShare(result2.Sealed[0], passwords(3)[0])
	assert.ErrorIs(t, err, mpcwallet.ErrWrongWallet)
}

func TestAddShareWrongPasswordReturnsFalseNotError(t *testing.T) {
	cfg := mpcwallet.ShareConfig{TotalShares: 3, Threshold: 2}
	pw := passwords(3)
	result, err := mpcwallet.Create(cfg, pw)
	require.NoError(t, err)

	w := mpcwallet.LoadState(result.State)
	ok, err := w.AddShare(result.Sealed[0], "not-the-password")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSignBelowThresholdFails(t *testing.T) {
	cfg := mpcwallet.ShareConfig{TotalShares: 5, Threshold: 3}
	pw := passwords(5)
	result, err := mpcwallet.Create(cfg, pw)
	require.NoError(t, err)

	w := mpcwallet.LoadState(result.State)
	_, err = w.AddShare(result.Sealed[0], pw[0])
	require.NoError(t, err)

	_, err = w.SignMessage([]byte("too early"))
	assert.ErrorIs(t, err, mpcwallet.ErrNotEnoughShares)
}

func TestImportKeyRejectsZeroScalar(t *testing.T) {
	_, err := mpcwallet.ImportKey(scalar.New(), mpcwallet.ShareConfig{TotalShares: 3, Threshold: 2}, passwords(3))
	assert.ErrorIs(t, err, mpcwallet.ErrInvalidScalar)
}

func TestImportKeyReproducesSuppliedScalarAddress(t *testing.T) {
	d, err := scalar.RandomScalar()
	require.NoError(t, err)
	want := ecdsasig.Address(ecdsasig.PublicKeyFromScalar(d))

	result, err := mpcwallet.ImportKey(d, mpcwallet.ShareConfig{TotalShares: 3, Threshold: 2}, passwords(3))
	require.NoError(t, err)
	assert.Equal(t, want, result.State.Address)
}
