// Package recovery implements the social-recovery state machine:
// guardian approvals accumulate against a threshold, a cancellable
// timelock runs after the threshold is reached, a cooldown separates
// initiation attempts, and execution reconstructs the secret via Shamir
// combine. Status is a lazy projection recomputed from the clock on
// every read, so two calls with the same clock reading always produce
// identical results.
package recovery

import (
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/luxfi/vault-core/internal/clock"
	"github.com/luxfi/vault-core/internal/zero"
	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/scalar"
	"github.com/luxfi/vault-core/pkg/shamir"
)

// Status is a recovery request's lifecycle state. Executed, cancelled
// and expired are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusReady     Status = "ready"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) terminal() bool {
	return s == StatusExecuted || s == StatusCancelled || s == StatusExpired
}

// GuardianApproval is one guardian's contribution to a recovery
// request: its share, in the clear, handed over so the secret can be
// recombined.
type GuardianApproval struct {
	GuardianID uuid.UUID
	ShareIndex party.ShareIndex
	ShareValue scalar.Scalar
	ApprovedAt time.Time
}

// Request is one recovery attempt for a wallet. At most one non-terminal
// Request exists per wallet address at any time; RecoveredSecret is set
// only once the request executes.
type Request struct {
	ID                uuid.UUID
	WalletAddress     string
	KeyID             uuid.UUID
	Initiator         string
	Reason            string
	Status            Status
	Threshold         int
	Approvals         []GuardianApproval
	TimelockMs        int64
	CreatedAt         time.Time
	ApprovedAt        time.Time
	TimelockExpiresAt time.Time
	ExpiresAt         time.Time
	ExecutedAt        time.Time
	RecoveredSecret   *scalar.Scalar
}

// InitiateParams are the caller-supplied fields of a new request.
type InitiateParams struct {
	WalletAddress string
	KeyID         uuid.UUID
	Initiator     string
	Reason        string
	Threshold     int
	TimelockMs    int64
	ExpirationMs  int64
}

// ApprovalProgress reports how close a request is to threshold.
type ApprovalProgress struct {
	Current    int
	Required   int
	Percentage float64
}

// Coordinator manages the recovery requests for a wallet family. A
// single Coordinator instance is not safe for concurrent use; callers
// must serialize access.
type Coordinator struct {
	requests    map[uuid.UUID]*Request
	lastAttempt map[string]time.Time
	clock       clock.Clock
	cooldown    time.Duration
}

// New returns a Coordinator using the real wall clock.
func New(cooldown time.Duration) *Coordinator {
	return NewWithClock(cooldown, clock.Real{})
}

// NewWithClock is New with an injectable clock, used by tests to drive
// timelock and cooldown transitions deterministically.
func NewWithClock(cooldown time.Duration, c clock.Clock) *Coordinator {
	return &Coordinator{
		requests:    make(map[uuid.UUID]*Request),
		lastAttempt: make(map[string]time.Time),
		clock:       c,
		cooldown:    cooldown,
	}
}

// Initiate starts a new recovery request. It fails with ErrCooldown
// until the cooldown window since the wallet's last attempt has
// elapsed, and with ErrAlreadyPending while a non-terminal request for
// the wallet exists. Every attempt, successful or not at reaching
// execution, restarts the cooldown window.
func (c *Coordinator) Initiate(p InitiateParams) (*Request, error) {
	now := c.clock.Now()

	if last, ok := c.lastAttempt[p.WalletAddress]; ok && now.Sub(last) < c.cooldown {
		return nil, ErrCooldown
	}
	if _, ok := c.GetPendingRequest(p.WalletAddress); ok {
		return nil, ErrAlreadyPending
	}

	req := &Request{
		ID:            newRequestID(p.WalletAddress),
		WalletAddress: p.WalletAddress,
		KeyID:         p.KeyID,
		Initiator:     p.Initiator,
		Reason:        p.Reason,
		Status:        StatusPending,
		Threshold:     p.Threshold,
		TimelockMs:    p.TimelockMs,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(p.ExpirationMs) * time.Millisecond),
	}
	c.requests[req.ID] = req
	c.lastAttempt[p.WalletAddress] = now

	return req, nil
}

// AddApproval records a guardian's approval. Reaching the threshold
// moves the request to approved and starts the timelock. Each guardian
// may approve at most once, and the share value must be a valid nonzero
// scalar; a zero or malformed value would silently poison the later
// combine.
func (c *Coordinator) AddApproval(requestID uuid.UUID, approval GuardianApproval) error {
	req, ok := c.requests[requestID]
	if !ok {
		return ErrRequestNotFound
	}
	c.updateStatus(req)

	if req.Status != StatusPending && req.Status != StatusApproved {
		return ErrInvalidState
	}
	for _, a := range req.Approvals {
		if a.GuardianID == approval.GuardianID {
			return ErrDuplicateGuardian
		}
	}
	if approval.ShareValue.IsZero() {
		return ErrInvalidScalar
	}

	now := c.clock.Now()
	approval.ApprovedAt = now
	req.Approvals = append(req.Approvals, approval)

	if req.Status == StatusPending && len(req.Approvals) >= req.Threshold {
		req.Status = StatusApproved
		req.ApprovedAt = now
		req.TimelockExpiresAt = now.Add(time.Duration(req.TimelockMs) * time.Millisecond)
	}
	return nil
}

// Execute reconstructs the secret from the collected approvals once the
// request is ready (threshold reached and timelock elapsed). The
// returned scalar is owned by the caller, who must zero it after use.
func (c *Coordinator) Execute(requestID uuid.UUID) (scalar.Scalar, error) {
	req, ok := c.requests[requestID]
	if !ok {
		return scalar.Scalar{}, ErrRequestNotFound
	}
	c.updateStatus(req)

	if req.Status != StatusReady {
		return scalar.Scalar{}, ErrInvalidState
	}

	shares := make([]shamir.Share, len(req.Approvals))
	for i, a := range req.Approvals {
		shares[i] = shamir.Share{X: a.ShareIndex, Y: a.ShareValue}
	}
	secret, err := shamir.Combine(shares)
	if err != nil {
		return scalar.Scalar{}, err
	}

	now := c.clock.Now()
	stored := secret
	req.RecoveredSecret = &stored
	req.ExecutedAt = now
	req.Status = StatusExecuted

	return secret, nil
}

// Cancel aborts a non-terminal request, zeroing every approval's share
// value before returning so it cannot leak via subsequent
// serialization.
func (c *Coordinator) Cancel(requestID uuid.UUID) error {
	req, ok := c.requests[requestID]
	if !ok {
		return ErrRequestNotFound
	}
	c.updateStatus(req)

	if req.Status != StatusPending && req.Status != StatusApproved && req.Status != StatusReady {
		return ErrInvalidState
	}

	req.Status = StatusCancelled
	for i := range req.Approvals {
		zero.Scalar(&req.Approvals[i].ShareValue)
	}
	return nil
}

// GetRequest returns the request with its status projection applied.
func (c *Coordinator) GetRequest(requestID uuid.UUID) (*Request, bool) {
	req, ok := c.requests[requestID]
	if !ok {
		return nil, false
	}
	c.updateStatus(req)
	return req, true
}

// GetPendingRequest scans for the first non-terminal request for
// walletAddress, applying the status projection to each candidate.
func (c *Coordinator) GetPendingRequest(walletAddress string) (*Request, bool) {
	for _, req := range c.requests {
		if req.WalletAddress != walletAddress {
			continue
		}
		c.updateStatus(req)
		if !req.Status.terminal() {
			return req, true
		}
	}
	return nil, false
}

// ApprovalProgress reports the request's approval count against its
// threshold.
func (c *Coordinator) ApprovalProgress(requestID uuid.UUID) (ApprovalProgress, error) {
	req, ok := c.GetRequest(requestID)
	if !ok {
		return ApprovalProgress{}, ErrRequestNotFound
	}
	pct := 0.0
	if req.Threshold > 0 {
		pct = float64(len(req.Approvals)) / float64(req.Threshold) * 100
	}
	return ApprovalProgress{
		Current:    len(req.Approvals),
		Required:   req.Threshold,
		Percentage: pct,
	}, nil
}

// TimelockRemaining reports the time left until the timelock expires,
// or 0 if there is none or it has already elapsed.
func (c *Coordinator) TimelockRemaining(requestID uuid.UUID) (time.Duration, error) {
	req, ok := c.GetRequest(requestID)
	if !ok {
		return 0, ErrRequestNotFound
	}
	if req.TimelockExpiresAt.IsZero() {
		return 0, nil
	}
	remaining := req.TimelockExpiresAt.Sub(c.clock.Now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// updateStatus is the lazy status projection: expiry overrides
// everything except execution, and an approved request whose timelock
// has elapsed becomes ready. Deterministic in (request, now) and
// idempotent, applied before any status-dependent read or transition.
func (c *Coordinator) updateStatus(req *Request) {
	now := c.clock.Now()

	if now.After(req.ExpiresAt) && !req.Status.terminal() {
		req.Status = StatusExpired
		return
	}
	if req.Status == StatusApproved && !req.TimelockExpiresAt.IsZero() && !now.Before(req.TimelockExpiresAt) {
		req.Status = StatusReady
	}
}

// newRequestID derives a request id by hashing the wallet address with
// a random nonce through blake3, folding the digest into a uuid.UUID.
// Keccak-256 stays reserved for the signing framings in pkg/ecdsasig so
// the two hashes are never confused in code.
func newRequestID(walletAddress string) uuid.UUID {
	nonce := uuid.New()
	digest := blake3.Sum256(append([]byte(walletAddress), nonce[:]...))
	var id uuid.UUID
	copy(id[:], digest[:16])
	return id
}
