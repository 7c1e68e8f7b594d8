package mpcwallet

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/luxfi/vault-core/internal/zero"
	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/envelope"
	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/scalar"
	"github.com/luxfi/vault-core/pkg/shamir"
)

// Wallet is the signing party: an immutable WalletState plus the shares
// collected so far toward the next signature. A single Wallet instance
// is not safe for concurrent use; callers must serialize access.
type Wallet struct {
	state     WalletState
	collected map[party.ShareIndex]scalar.Scalar
}

// LoadState adopts a previously created wallet state.
func LoadState(state WalletState) *Wallet {
	return &Wallet{
		state:     state,
		collected: make(map[party.ShareIndex]scalar.Scalar),
	}
}

// State returns the wallet's immutable identity.
func (w *Wallet) State() WalletState {
	return w.state
}

// Create generates a new random scalar, derives its public key and
// address, splits it into cfg.TotalShares Shamir shares, and seals each
// one under its corresponding password.
func Create(cfg ShareConfig, passwords []string) (CreateResult, error) {
	if err := cfg.Validate(); err != nil {
		return CreateResult{}, err
	}
	if len(passwords) != cfg.TotalShares {
		return CreateResult{}, ErrPasswordCountMismatch
	}

	secret, err := scalar.RandomScalar()
	if err != nil {
		return CreateResult{}, err
	}
	defer zero.Scalar(&secret)

	return buildWallet(secret, cfg, passwords)
}

// ImportKey is Create but with the scalar supplied by the caller, for
// example a key derived from a BIP-39 mnemonic upstream. The scalar
// must be in [1, n-1].
func ImportKey(secret scalar.Scalar, cfg ShareConfig, passwords []string) (CreateResult, error) {
	if secret.IsZero() {
		return CreateResult{}, ErrInvalidScalar
	}
	if err := cfg.Validate(); err != nil {
		return CreateResult{}, err
	}
	if len(passwords) != cfg.TotalShares {
		return CreateResult{}, ErrPasswordCountMismatch
	}

	return buildWallet(secret, cfg, passwords)
}

func buildWallet(secret scalar.Scalar, cfg ShareConfig, passwords []string) (CreateResult, error) {
	pub := ecdsasig.PublicKeyFromScalar(secret)
	addr := ecdsasig.Address(pub)
	keyID := uuid.New()

	shares, err := shamir.Split(secret, cfg.TotalShares, cfg.Threshold)
	if err != nil {
		return CreateResult{}, err
	}

	// Shares travel through envelopes as their 64-hex-character form,
	// the encoding other holders of the format expect.
	plaintexts := make([][]byte, len(shares))
	for i, s := range shares {
		plaintexts[i] = []byte(hex.EncodeToString(s.Y.Bytes()))
	}

	envs, err := envelope.SealAll(plaintexts, passwords)
	if err != nil {
		return CreateResult{}, err
	}

	pubBytes := pub.SerializeCompressed()
	state := WalletState{
		KeyID:        keyID,
		PublicKey:    pub,
		Address:      addr,
		Config:       cfg,
		PublicShares: derivePublicShares(shares),
	}

	sealed := make([]EncryptedShareRecord, len(shares))
	for i, s := range shares {
		sealed[i] = EncryptedShareRecord{
			Index:          s.X,
			EncryptedShare: envs[i],
			PublicKey:      pubBytes,
			Address:        addr,
			KeyID:          keyID,
			Config:         cfg,
		}
	}

	return CreateResult{State: state, Sealed: sealed, PlainShares: shares}, nil
}

// AddShare opens rec's envelope with password and inserts the recovered
// share into the collected set. A wrong password returns (false, nil)
// so the caller can prompt the user again without learning which
// password was wrong; AlreadyCollected and WrongWallet are returned as
// errors since they are caller mistakes, not password-entry mistakes.
func (w *Wallet) AddShare(rec EncryptedShareRecord, password string) (bool, error) {
	if _, ok := w.collected[rec.Index]; ok {
		return false, ErrAlreadyCollected
	}
	if rec.KeyID != w.state.KeyID {
		return false, ErrWrongWallet
	}

	plaintext, err := envelope.Open(rec.EncryptedShare, password)
	if err != nil {
		return false, nil
	}
	defer zero.Bytes(plaintext)

	raw, err := hex.DecodeString(string(plaintext))
	if err != nil {
		return false, nil
	}
	defer zero.Bytes(raw)

	y, err := scalar.FromCanonicalBytes(raw)
	if err != nil {
		return false, nil
	}

	if err := verifyShareProvenance(w.state, rec.Index, y); err != nil {
		return false, err
	}

	w.collected[rec.Index] = y
	return true, nil
}

// CanSign reports whether enough shares have been collected to sign.
func (w *Wallet) CanSign() bool {
	return len(w.collected) >= w.state.Config.Threshold
}

// Lock zeroizes and clears the collected shares. The overwrite is
// written back into the map before the entry is deleted; ranging over
// the values alone would only zero a copy.
func (w *Wallet) Lock() {
	for idx, s := range w.collected {
		zero.Scalar(&s)
		w.collected[idx] = s
		delete(w.collected, idx)
	}
}

// reconstruct combines the collected shares into the signing scalar.
// The caller owns the returned scalar and must zero it before
// returning.
func (w *Wallet) reconstruct() (scalar.Scalar, error) {
	if !w.CanSign() {
		return scalar.Scalar{}, ErrNotEnoughShares
	}
	shares := make([]shamir.Share, 0, len(w.collected))
	for x, y := range w.collected {
		shares = append(shares, shamir.Share{X: x, Y: y})
	}
	return shamir.Combine(shares)
}

// SignMessage signs payload under the personal-message framing. The
// reconstructed scalar lives only on this call's stack and is zeroized
// before returning, as is the collected-share set.
func (w *Wallet) SignMessage(payload []byte) (ecdsasig.Signature, error) {
	d, err := w.reconstruct()
	if err != nil {
		return ecdsasig.Signature{}, err
	}
	defer zero.Scalar(&d)
	defer w.Lock()

	return ecdsasig.SignPersonal(payload, d)
}

// SignTyped signs an already-computed EIP-712 domain separator and
// struct hash.
func (w *Wallet) SignTyped(domainSeparator, structHash [32]byte) (ecdsasig.Signature, error) {
	d, err := w.reconstruct()
	if err != nil {
		return ecdsasig.Signature{}, err
	}
	defer zero.Scalar(&d)
	defer w.Lock()

	return ecdsasig.SignTyped(domainSeparator, structHash, d)
}

// SignTransaction signs a raw transaction under the EIP-155 framing.
func (w *Wallet) SignTransaction(tx ecdsasig.Transaction) (ecdsasig.Signature, error) {
	d, err := w.reconstruct()
	if err != nil {
		return ecdsasig.Signature{}, err
	}
	defer zero.Scalar(&d)
	defer w.Lock()

	return ecdsasig.SignTransaction(tx, d)
}
