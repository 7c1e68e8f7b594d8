package main

import (
	"encoding/hex"

	"github.com/luxfi/vault-core/pkg/envelope"
	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/scalar"
	"github.com/luxfi/vault-core/wallet/facade"
	"github.com/luxfi/vault-core/wallet/guardian"
	"github.com/luxfi/vault-core/wallet/mpcwallet"
)

// shareRecordFromInvite rebuilds the full sealed share record a
// guardian would present: the invite only carries the envelope, the
// rest is the wallet's public identity.
func shareRecordFromInvite(setup facade.SetupResult, index party.ShareIndex, inv guardian.Invite) mpcwallet.EncryptedShareRecord {
	return mpcwallet.EncryptedShareRecord{
		Index:          index,
		EncryptedShare: inv.EncryptedShare,
		PublicKey:      setup.WalletState.PublicKey.SerializeCompressed(),
		Address:        setup.WalletState.Address,
		KeyID:          setup.WalletState.KeyID,
		Config:         setup.WalletState.Config,
	}
}

// openInviteShare plays the guardian's side of an approval: decrypt the
// invite's envelope with the guardian's own password and return the
// plaintext share value.
func openInviteShare(inv guardian.Invite, password string) (scalar.Scalar, error) {
	plaintext, err := envelope.Open(inv.EncryptedShare, password)
	if err != nil {
		return scalar.Scalar{}, err
	}
	raw, err := hex.DecodeString(string(plaintext))
	if err != nil {
		return scalar.Scalar{}, err
	}
	return scalar.FromCanonicalBytes(raw)
}
