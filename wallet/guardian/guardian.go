// Package guardian implements the guardian table and pending-invite
// challenge/response flow. State is kept in plain in-memory maps;
// persistence belongs to the storage layer above.
package guardian

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/vault-core/internal/clock"
	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/envelope"
	"github.com/luxfi/vault-core/pkg/party"
)

// ContactType is how a guardian is reachable out-of-band.
type ContactType string

const (
	ContactEmail  ContactType = "email"
	ContactPhone  ContactType = "phone"
	ContactWallet ContactType = "wallet"
	ContactOther  ContactType = "other"
)

// Status is a guardian's lifecycle state: created pending, moved to
// accepted or declined by the invite response, possibly revoked later.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusRevoked  Status = "revoked"
)

// Guardian is a third party holding one encrypted share. ShareIndex is
// unique among a wallet's non-revoked guardians.
type Guardian struct {
	ID               uuid.UUID
	Name             string
	Contact          string
	ContactType      ContactType
	ShareIndex       party.ShareIndex
	Status           Status
	AddedAt          time.Time
	AcceptedAt       time.Time
	VerificationHash []byte
}

// Invite is the pending challenge handed to a guardian out-of-band.
// The plaintext VerificationCode leaves the system exactly once, in the
// value CreateInvite returns; only its hash persists on the guardian
// record.
type Invite struct {
	ID               uuid.UUID
	GuardianID       uuid.UUID
	WalletAddress    string
	EncryptedShare   envelope.Envelope
	VerificationCode string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// Manager holds the guardian table and pending invites for one wallet.
// A single Manager instance is not safe for concurrent use; callers
// must serialize access.
type Manager struct {
	guardians map[uuid.UUID]*Guardian
	invites   map[uuid.UUID]*Invite
	clock     clock.Clock
}

// New returns an empty Manager using the real wall clock.
func New() *Manager {
	return NewWithClock(clock.Real{})
}

// NewWithClock is New with an injectable clock, used by tests that need
// to drive invite expiration deterministically.
func NewWithClock(c clock.Clock) *Manager {
	return &Manager{
		guardians: make(map[uuid.UUID]*Guardian),
		invites:   make(map[uuid.UUID]*Invite),
		clock:     c,
	}
}

// CreateInvite registers a new pending guardian and issues its invite.
// The returned Invite.VerificationCode must be delivered out-of-band by
// the caller; it is never stored.
func (m *Manager) CreateInvite(name, contact string, contactType ContactType, shareIndex party.ShareIndex, walletAddress string, encryptedShare envelope.Envelope, ttl time.Duration) (Invite, error) {
	for _, g := range m.guardians {
		if g.ShareIndex == shareIndex && g.Status != StatusRevoked {
			return Invite{}, ErrShareIndexInUse
		}
	}

	code, err := randomDigits(6)
	if err != nil {
		return Invite{}, err
	}

	now := m.clock.Now()
	g := &Guardian{
		ID:               uuid.New(),
		Name:             name,
		Contact:          contact,
		ContactType:      contactType,
		ShareIndex:       shareIndex,
		Status:           StatusPending,
		AddedAt:          now,
		VerificationHash: hashCode(code),
	}
	m.guardians[g.ID] = g

	inv := &Invite{
		ID:               uuid.New(),
		GuardianID:       g.ID,
		WalletAddress:    walletAddress,
		EncryptedShare:   encryptedShare,
		VerificationCode: code,
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
	}
	m.invites[inv.ID] = inv

	return *inv, nil
}

// ProcessResponse answers a guardian's accept/decline: the invite is
// looked up (expired invites are swept on any scan), the supplied code
// is compared in constant time against the stored hash, and on match
// the guardian's status is updated and the invite is dropped.
func (m *Manager) ProcessResponse(inviteID, guardianID uuid.UUID, accepted bool, verificationCode string) error {
	inv, ok := m.invites[inviteID]
	if ok && m.clock.Now().After(inv.ExpiresAt) {
		delete(m.invites, inviteID)
		return ErrInviteExpired
	}
	if !ok || inv.GuardianID != guardianID {
		return ErrInviteNotFound
	}
	m.sweepExpired()

	g, ok := m.guardians[guardianID]
	if !ok {
		return ErrGuardianNotFound
	}

	if subtle.ConstantTimeCompare(hashCode(verificationCode), g.VerificationHash) != 1 {
		return ErrBadCode
	}

	if accepted {
		g.Status = StatusAccepted
		g.AcceptedAt = m.clock.Now()
	} else {
		g.Status = StatusDeclined
	}
	delete(m.invites, inviteID)
	return nil
}

// Restore inserts a guardian record loaded from external storage,
// bypassing the invite flow. Used by wallet/facade.Restore; invites are
// transient and never persisted, so a restored guardian never has a
// pending invite.
func (m *Manager) Restore(g Guardian) {
	gCopy := g
	m.guardians[g.ID] = &gCopy
}

// Revoke marks a guardian revoked, freeing its share index for reuse.
func (m *Manager) Revoke(guardianID uuid.UUID) error {
	g, ok := m.guardians[guardianID]
	if !ok {
		return ErrGuardianNotFound
	}
	g.Status = StatusRevoked
	return nil
}

// GetAll returns every guardian.
func (m *Manager) GetAll() []Guardian {
	out := make([]Guardian, 0, len(m.guardians))
	for _, g := range m.guardians {
		out = append(out, *g)
	}
	return out
}

// GetActive returns guardians that have accepted their invite.
func (m *Manager) GetActive() []Guardian {
	out := make([]Guardian, 0, len(m.guardians))
	for _, g := range m.guardians {
		if g.Status == StatusAccepted {
			out = append(out, *g)
		}
	}
	return out
}

// GetByShareIndex returns the guardian assigned shareIndex, if any.
func (m *Manager) GetByShareIndex(shareIndex party.ShareIndex) (Guardian, bool) {
	for _, g := range m.guardians {
		if g.ShareIndex == shareIndex {
			return *g, true
		}
	}
	return Guardian{}, false
}

// GetByID returns the guardian with the given id, if any.
func (m *Manager) GetByID(id uuid.UUID) (Guardian, bool) {
	g, ok := m.guardians[id]
	if !ok {
		return Guardian{}, false
	}
	return *g, true
}

// HasEnough reports whether at least threshold guardians are accepted.
func (m *Manager) HasEnough(threshold int) bool {
	return len(m.GetActive()) >= threshold
}

func (m *Manager) sweepExpired() {
	now := m.clock.Now()
	for id, inv := range m.invites {
		if now.After(inv.ExpiresAt) {
			delete(m.invites, id)
		}
	}
}

// hashCode hashes a verification code's UTF-8 bytes with Keccak-256,
// reusing pkg/ecdsasig's Keccak256 rather than adding a second hash
// import for the same primitive.
func hashCode(code string) []byte {
	return ecdsasig.Keccak256([]byte(code))
}

// randomDigits samples n uniformly random decimal digits.
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("guardian: sampling verification code: %w", err)
		}
		digits[i] = byte('0') + byte(d.Int64())
	}
	return string(digits), nil
}
