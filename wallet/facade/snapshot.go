package facade

import (
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/wallet/guardian"
	"github.com/luxfi/vault-core/wallet/mpcwallet"
	"github.com/luxfi/vault-core/wallet/recovery"
)

// snapshotWire is the CBOR persistence record an external storage
// adapter uses to reload a Facade instance. Guardian invites are
// transient and deliberately excluded; only the guardian records
// themselves survive a reload. Timestamps are integer milliseconds
// since the Unix epoch.
type snapshotWire struct {
	Config       Config                      `cbor:"config"`
	KeyID        uuid.UUID                   `cbor:"keyId"`
	PublicKey    []byte                      `cbor:"publicKey"` // compressed
	Address      string                      `cbor:"address"`
	PublicShares map[party.ShareIndex][]byte `cbor:"publicShares,omitempty"`
	Guardians    []guardianWire              `cbor:"guardians"`
}

type guardianWire struct {
	ID               uuid.UUID            `cbor:"id"`
	Name             string               `cbor:"name"`
	Contact          string               `cbor:"contact"`
	ContactType      guardian.ContactType `cbor:"contactType"`
	ShareIndex       party.ShareIndex     `cbor:"shareIndex"`
	Status           guardian.Status      `cbor:"status"`
	AddedAtMs        int64                `cbor:"addedAt"`
	AcceptedAtMs     int64                `cbor:"acceptedAt,omitempty"`
	VerificationHash []byte               `cbor:"verificationHash,omitempty"`
}

// Snapshot encodes the facade's wallet identity and guardian table
// (excluding invites) as CBOR. This is an internal storage shape, not
// one of the JSON wire formats, so it gets the compact codec.
func (f *Facade) Snapshot() ([]byte, error) {
	if f.wallet == nil {
		return nil, ErrNotSetup
	}
	state := f.wallet.State()

	publicShares := make(map[party.ShareIndex][]byte, len(state.PublicShares))
	for idx, pub := range state.PublicShares {
		publicShares[idx] = pub.SerializeCompressed()
	}

	guardians := f.guardians.GetAll()
	wireGuardians := make([]guardianWire, len(guardians))
	for i, g := range guardians {
		w := guardianWire{
			ID:               g.ID,
			Name:             g.Name,
			Contact:          g.Contact,
			ContactType:      g.ContactType,
			ShareIndex:       g.ShareIndex,
			Status:           g.Status,
			VerificationHash: g.VerificationHash,
		}
		if !g.AddedAt.IsZero() {
			w.AddedAtMs = g.AddedAt.UnixMilli()
		}
		if !g.AcceptedAt.IsZero() {
			w.AcceptedAtMs = g.AcceptedAt.UnixMilli()
		}
		wireGuardians[i] = w
	}

	wire := snapshotWire{
		Config:       f.config,
		KeyID:        state.KeyID,
		PublicKey:    state.PublicKey.SerializeCompressed(),
		Address:      state.Address,
		PublicShares: publicShares,
		Guardians:    wireGuardians,
	}

	return cbor.Marshal(wire)
}

// Restore decodes a Snapshot and reconstructs a Facade ready for
// UnlockOwnerShares/AddGuardianShare. Restored guardians carry no
// pending invites, since invites are never persisted.
func Restore(data []byte, cooldown time.Duration) (*Facade, error) {
	var wire snapshotWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("facade: decoding snapshot: %w", err)
	}

	pub, err := secp256k1.ParsePubKey(wire.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("facade: decoding snapshot public key: %w", err)
	}

	state := mpcwallet.WalletState{
		KeyID:     wire.KeyID,
		PublicKey: pub,
		Address:   wire.Address,
		Config: mpcwallet.ShareConfig{
			TotalShares: wire.Config.TotalShares,
			Threshold:   wire.Config.Threshold,
		},
	}
	if len(wire.PublicShares) > 0 {
		state.PublicShares = make(map[party.ShareIndex]*secp256k1.PublicKey, len(wire.PublicShares))
		for idx, compressed := range wire.PublicShares {
			p, err := secp256k1.ParsePubKey(compressed)
			if err != nil {
				return nil, fmt.Errorf("facade: decoding public share %d: %w", idx, err)
			}
			state.PublicShares[idx] = p
		}
	}

	f := &Facade{
		config:    wire.Config,
		wallet:    mpcwallet.LoadState(state),
		guardians: guardian.New(),
		recovery:  recovery.New(cooldown),
	}

	for _, w := range wire.Guardians {
		f.guardians.Restore(guardian.Guardian{
			ID:               w.ID,
			Name:             w.Name,
			Contact:          w.Contact,
			ContactType:      w.ContactType,
			ShareIndex:       w.ShareIndex,
			Status:           w.Status,
			AddedAt:          msToTime(w.AddedAtMs),
			AcceptedAt:       msToTime(w.AcceptedAtMs),
			VerificationHash: w.VerificationHash,
		})
	}

	return f, nil
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
