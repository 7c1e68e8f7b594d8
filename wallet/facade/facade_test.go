package facade_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/wallet/facade"
	"github.com/luxfi/vault-core/wallet/guardian"
	"github.com/luxfi/vault-core/wallet/mpcwallet"
)

func testConfig() facade.Config {
	return facade.Config{
		TotalShares:    5,
		Threshold:      3,
		OwnerShares:    1,
		TimelockHours:  0,
		ExpirationDays: 30,
	}
}

func testGuardians() []facade.GuardianDescriptor {
	return []facade.GuardianDescriptor{
		{Name: "Alice", Contact: "alice@example.com", ContactType: guardian.ContactEmail, SharePassword: "g1-pass"},
		{Name: "Bob", Contact: "bob@example.com", ContactType: guardian.ContactEmail, SharePassword: "g2-pass"},
		{Name: "Carol", Contact: "carol@example.com", ContactType: guardian.ContactEmail, SharePassword: "g3-pass"},
		{Name: "Dave", Contact: "dave@example.com", ContactType: guardian.ContactEmail, SharePassword: "g4-pass"},
	}
}

// Full lifecycle: set up a wallet, unlock and sign with owner plus
// guardian shares, and check the signature recovers to the wallet key.
func TestFacadeSetupSignRecoverLifecycle(t *testing.T) {
	f, err := facade.New(testConfig(), time.Hour)
	require.NoError(t, err)

	setup, err := f.Setup("owner-pass", testGuardians())
	require.NoError(t, err)
	require.Len(t, setup.OwnerShares, 1)
	require.Len(t, setup.GuardianInvites, 4)

	ok, err := f.UnlockOwnerShares(setup.OwnerShares, "owner-pass")
	require.NoError(t, err)
	assert.True(t, ok, "the single owner share decrypts under the owner password")
	assert.False(t, f.CanSign(), "one owner share alone is below the 3-of-5 threshold")

	// Two guardians accept and their shares get fed in alongside the
	// owner's single share to reach the 3-of-5 threshold. A guardian
	// reconstructs its own EncryptedShareRecord from the invite's
	// envelope plus its own share index and the wallet's public
	// identity; the invite itself only carries the envelope.
	for i := 0; i < 2; i++ {
		inv := setup.GuardianInvites[i]
		err := f.Guardians().ProcessResponse(inv.ID, inv.GuardianID, true, inv.VerificationCode)
		require.NoError(t, err)

		g, ok := f.Guardians().GetByID(inv.GuardianID)
		require.True(t, ok)

		rec := mpcwallet.EncryptedShareRecord{
			Index:          g.ShareIndex,
			EncryptedShare: inv.EncryptedShare,
			PublicKey:      setup.WalletState.PublicKey.SerializeCompressed(),
			Address:        setup.WalletState.Address,
			KeyID:          setup.WalletState.KeyID,
			Config:         setup.WalletState.Config,
		}

		added, err := f.AddGuardianShare(rec, testGuardians()[i].SharePassword)
		require.NoError(t, err)
		require.True(t, added)
	}

	assert.True(t, f.CanSign())

	sig, err := f.SignMessage([]byte("hello"))
	require.NoError(t, err)
	digest := ecdsasig.Keccak256([]byte("\x19Ethereum Signed Message:\n5hello"))
	recovered, err := ecdsasig.Recover(digest, ecdsasig.Signature{R: sig.R, S: sig.S, V: sig.V - 27})
	require.NoError(t, err)
	assert.True(t, recovered.IsEqual(setup.WalletState.PublicKey))
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  facade.Config
		ok   bool
	}{
		{"valid", facade.Config{TotalShares: 5, Threshold: 3, OwnerShares: 1}, true},
		{"threshold too low", facade.Config{TotalShares: 5, Threshold: 1, OwnerShares: 1}, false},
		{"owner shares zero", facade.Config{TotalShares: 5, Threshold: 3, OwnerShares: 0}, false},
		{"total less than threshold", facade.Config{TotalShares: 2, Threshold: 3, OwnerShares: 1}, false},
		{"owner shares eat whole pool", facade.Config{TotalShares: 5, Threshold: 3, OwnerShares: 5}, false},
		{"guardians alone can't reach threshold", facade.Config{TotalShares: 5, Threshold: 5, OwnerShares: 3}, false},
		{"owner-free recovery permitted", facade.Config{TotalShares: 5, Threshold: 3, OwnerShares: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, facade.ErrConfigInvalid)
			}
		})
	}
}

func TestSetupRejectsGuardianCountMismatch(t *testing.T) {
	f, err := facade.New(testConfig(), time.Hour)
	require.NoError(t, err)

	_, err = f.Setup("owner-pass", testGuardians()[:2])
	assert.ErrorIs(t, err, facade.ErrGuardianDescriptorCountMismatch)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	f, err := facade.New(testConfig(), time.Hour)
	require.NoError(t, err)

	setup, err := f.Setup("owner-pass", testGuardians())
	require.NoError(t, err)

	data, err := f.Snapshot()
	require.NoError(t, err)

	restored, err := facade.Restore(data, time.Hour)
	require.NoError(t, err)

	ok, err := restored.UnlockOwnerShares(setup.OwnerShares, "owner-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, restored.Guardians().GetAll(), 4)
}
