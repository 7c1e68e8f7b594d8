// Package facade composes the envelope cipher, the threshold wallet,
// the guardian manager and the recovery coordinator behind a single API
// surface, enforcing the sharing-layout invariants and handling the
// owner-vs-guardian share partition.
package facade

import (
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/scalar"
	"github.com/luxfi/vault-core/pkg/shamir"
	"github.com/luxfi/vault-core/wallet/guardian"
	"github.com/luxfi/vault-core/wallet/mpcwallet"
	"github.com/luxfi/vault-core/wallet/recovery"
)

// GuardianDescriptor is the caller-supplied information for one
// guardian at setup time.
type GuardianDescriptor struct {
	Name          string
	Contact       string
	ContactType   guardian.ContactType
	SharePassword string
}

// SetupResult is the return value of Setup: the wallet identity, the
// owner's sealed shares, one invite per guardian, and the owner's
// plaintext shares for immediate backup.
type SetupResult struct {
	WalletState      mpcwallet.WalletState
	OwnerShares      []mpcwallet.EncryptedShareRecord
	GuardianInvites  []guardian.Invite
	OwnerPlainShares []shamir.Share
}

// Facade is the composed wallet. A single Facade instance is not safe
// for concurrent use; callers must serialize access.
type Facade struct {
	config    Config
	wallet    *mpcwallet.Wallet
	guardians *guardian.Manager
	recovery  *recovery.Coordinator
}

// New validates cfg and returns a Facade with no wallet loaded yet;
// callers call Setup (for a fresh wallet) or Restore (from a snapshot)
// before signing or recovery operations are available.
func New(cfg Config, cooldown time.Duration) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Facade{
		config:    cfg,
		guardians: guardian.New(),
		recovery:  recovery.New(cooldown),
	}, nil
}

// Setup creates a new wallet via mpcwallet.Create and partitions the
// sealed shares: the first OwnerShares are sealed under ownerPassword
// and kept for the owner; the remainder are sealed under each
// guardian's own share password and turned into one invite per
// guardian.
func (f *Facade) Setup(ownerPassword string, guardians []GuardianDescriptor) (SetupResult, error) {
	if len(guardians) != f.config.guardianShareCount() {
		return SetupResult{}, ErrGuardianDescriptorCountMismatch
	}

	passwords := make([]string, f.config.TotalShares)
	for i := 0; i < f.config.OwnerShares; i++ {
		passwords[i] = ownerPassword
	}
	for i, g := range guardians {
		passwords[f.config.OwnerShares+i] = g.SharePassword
	}

	result, err := mpcwallet.Create(mpcwallet.ShareConfig{
		TotalShares: f.config.TotalShares,
		Threshold:   f.config.Threshold,
	}, passwords)
	if err != nil {
		return SetupResult{}, err
	}

	f.wallet = mpcwallet.LoadState(result.State)

	ownerSealed := result.Sealed[:f.config.OwnerShares]
	guardianSealed := result.Sealed[f.config.OwnerShares:]

	inviteTTL := time.Duration(f.config.ExpirationDays) * 24 * time.Hour
	invites := make([]guardian.Invite, len(guardians))
	for i, gd := range guardians {
		inv, err := f.guardians.CreateInvite(
			gd.Name, gd.Contact, gd.ContactType,
			guardianSealed[i].Index, result.State.Address,
			guardianSealed[i].EncryptedShare, inviteTTL,
		)
		if err != nil {
			return SetupResult{}, err
		}
		invites[i] = inv
	}

	return SetupResult{
		WalletState:      result.State,
		OwnerShares:      ownerSealed,
		GuardianInvites:  invites,
		OwnerPlainShares: result.PlainShares[:f.config.OwnerShares],
	}, nil
}

// UnlockOwnerShares opens every owner share under password and feeds
// each into the wallet. It returns true only when every owner share
// decrypts; all owner shares are assumed to share one password.
func (f *Facade) UnlockOwnerShares(ownerSealed []mpcwallet.EncryptedShareRecord, password string) (bool, error) {
	if f.wallet == nil {
		return false, ErrNotSetup
	}
	for _, rec := range ownerSealed {
		ok, err := f.wallet.AddShare(rec, password)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// AddGuardianShare opens a single guardian share under password and
// feeds it into the wallet.
func (f *Facade) AddGuardianShare(rec mpcwallet.EncryptedShareRecord, password string) (bool, error) {
	if f.wallet == nil {
		return false, ErrNotSetup
	}
	return f.wallet.AddShare(rec, password)
}

// CanSign reports whether enough shares have been collected to sign.
func (f *Facade) CanSign() bool {
	return f.wallet != nil && f.wallet.CanSign()
}

// SignMessage delegates to the wallet's personal-message framing.
func (f *Facade) SignMessage(payload []byte) (ecdsasig.Signature, error) {
	if f.wallet == nil {
		return ecdsasig.Signature{}, ErrNotSetup
	}
	return f.wallet.SignMessage(payload)
}

// SignTyped delegates to the wallet's typed-data framing.
func (f *Facade) SignTyped(domainSeparator, structHash [32]byte) (ecdsasig.Signature, error) {
	if f.wallet == nil {
		return ecdsasig.Signature{}, ErrNotSetup
	}
	return f.wallet.SignTyped(domainSeparator, structHash)
}

// SignTransaction delegates to the wallet's raw-transaction framing.
func (f *Facade) SignTransaction(tx ecdsasig.Transaction) (ecdsasig.Signature, error) {
	if f.wallet == nil {
		return ecdsasig.Signature{}, ErrNotSetup
	}
	return f.wallet.SignTransaction(tx)
}

// Guardians exposes the guardian manager's query surface.
func (f *Facade) Guardians() *guardian.Manager {
	return f.guardians
}

// InitiateRecovery starts a recovery request for the loaded wallet,
// deriving the timelock and expiration windows from the facade's
// configuration.
func (f *Facade) InitiateRecovery(initiator, reason string) (*recovery.Request, error) {
	if f.wallet == nil {
		return nil, ErrNotSetup
	}
	state := f.wallet.State()
	return f.recovery.Initiate(recovery.InitiateParams{
		WalletAddress: state.Address,
		KeyID:         state.KeyID,
		Initiator:     initiator,
		Reason:        reason,
		Threshold:     f.config.Threshold,
		TimelockMs:    int64(f.config.TimelockHours) * int64(time.Hour/time.Millisecond),
		ExpirationMs:  int64(f.config.ExpirationDays) * int64(24*time.Hour/time.Millisecond),
	})
}

// AddRecoveryApproval looks up guardianID's shareIndex and forwards it
// with the supplied plaintext share value to the recovery coordinator.
func (f *Facade) AddRecoveryApproval(requestID, guardianID uuid.UUID, shareValue scalar.Scalar) error {
	g, ok := f.guardians.GetByID(guardianID)
	if !ok {
		return guardian.ErrGuardianNotFound
	}
	return f.recovery.AddApproval(requestID, recovery.GuardianApproval{
		GuardianID: guardianID,
		ShareIndex: g.ShareIndex,
		ShareValue: shareValue,
	})
}

// ExecuteRecovery delegates to the recovery coordinator.
func (f *Facade) ExecuteRecovery(requestID uuid.UUID) (scalar.Scalar, error) {
	return f.recovery.Execute(requestID)
}

// CancelRecovery delegates to the recovery coordinator.
func (f *Facade) CancelRecovery(requestID uuid.UUID) error {
	return f.recovery.Cancel(requestID)
}

// RecoveryRequest exposes the recovery coordinator's read path.
func (f *Facade) RecoveryRequest(requestID uuid.UUID) (*recovery.Request, bool) {
	return f.recovery.GetRequest(requestID)
}
