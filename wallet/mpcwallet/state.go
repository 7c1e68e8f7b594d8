// Package mpcwallet implements a threshold wallet that orchestrates
// Shamir share collection, reconstruction, and ECDSA signing. This is
// threshold sharing, not multi-party computation: the private scalar is
// fully reconstructed in the signing party's memory and zeroized
// immediately after use.
package mpcwallet

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/google/uuid"

	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/envelope"
	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/shamir"
)

// ShareConfig is the (total, threshold) pair carried on every share
// record of a wallet. Every record sharing a KeyID carries the same
// config, public key and address.
type ShareConfig struct {
	TotalShares int `json:"totalShares"`
	Threshold   int `json:"threshold"`
}

// Validate rejects layouts that can never sign or never split.
func (c ShareConfig) Validate() error {
	if c.Threshold < 2 || c.Threshold > c.TotalShares || c.TotalShares > 255 {
		return ErrConfigInvalid
	}
	return nil
}

// WalletState is the immutable identity of a wallet, shared by every
// share record carrying the same KeyID.
type WalletState struct {
	KeyID     uuid.UUID
	PublicKey *secp256k1.PublicKey
	Address   string
	Config    ShareConfig

	// PublicShares records g^{y_i} for each share index generated at
	// Create/ImportKey time, used by verifyShareProvenance (aux.go) to
	// reject a silently corrupted share before it reaches
	// shamir.Combine.
	PublicShares map[party.ShareIndex]*secp256k1.PublicKey
}

// EncryptedShareRecord is a share record with its scalar replaced by a
// password-sealed envelope. Created at setup, immutable thereafter.
type EncryptedShareRecord struct {
	Index          party.ShareIndex
	EncryptedShare envelope.Envelope
	PublicKey      []byte // compressed secp256k1 point
	Address        string
	KeyID          uuid.UUID
	Config         ShareConfig
	Label          string
}

// CreateResult is the return value of Create and ImportKey: the new
// wallet state, every share sealed under its corresponding password,
// and the plaintext shares so the caller can immediately hand the owner
// their backup copy. The plaintext shares exist in cleartext only here,
// once, at setup.
type CreateResult struct {
	State       WalletState
	Sealed      []EncryptedShareRecord
	PlainShares []shamir.Share
}

// wireShareRecord is the JSON-safe shadow of EncryptedShareRecord.
type wireShareRecord struct {
	Index          byte              `json:"index"`
	EncryptedShare envelope.Envelope `json:"encryptedShare"`
	PublicKey      string            `json:"publicKey"`
	Address        string            `json:"address"`
	KeyID          string            `json:"keyId"`
	Config         ShareConfig       `json:"config"`
	Label          string            `json:"label,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r EncryptedShareRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireShareRecord{
		Index:          r.Index,
		EncryptedShare: r.EncryptedShare,
		PublicKey:      base64.StdEncoding.EncodeToString(r.PublicKey),
		Address:        r.Address,
		KeyID:          r.KeyID.String(),
		Config:         r.Config,
		Label:          r.Label,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *EncryptedShareRecord) UnmarshalJSON(data []byte) error {
	var w wireShareRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	pub, err := base64.StdEncoding.DecodeString(w.PublicKey)
	if err != nil {
		return fmt.Errorf("mpcwallet: decoding public key: %w", err)
	}
	keyID, err := uuid.Parse(w.KeyID)
	if err != nil {
		return fmt.Errorf("mpcwallet: parsing keyId: %w", err)
	}
	r.Index = w.Index
	r.EncryptedShare = w.EncryptedShare
	r.PublicKey = pub
	r.Address = w.Address
	r.KeyID = keyID
	r.Config = w.Config
	r.Label = w.Label
	return nil
}

// derivePublicShares computes g^{y_i} for every split share, the
// per-index commitment verifyShareProvenance checks a collected share
// against.
func derivePublicShares(shares []shamir.Share) map[party.ShareIndex]*secp256k1.PublicKey {
	out := make(map[party.ShareIndex]*secp256k1.PublicKey, len(shares))
	for _, s := range shares {
		out[s.X] = ecdsasig.PublicKeyFromScalar(s.Y)
	}
	return out
}
