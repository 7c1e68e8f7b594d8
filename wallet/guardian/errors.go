package guardian

import "errors"

var (
	// ErrInviteNotFound is returned when ProcessResponse references an
	// unknown (or already-expired-and-swept) invite id.
	ErrInviteNotFound = errors.New("guardian: invite not found")
	// ErrInviteExpired is returned for an invite past its ExpiresAt.
	ErrInviteExpired = errors.New("guardian: invite expired")
	// ErrBadCode is returned when the supplied verification code does
	// not match the hash recorded on the guardian.
	ErrBadCode = errors.New("guardian: verification code does not match")
	// ErrGuardianNotFound is returned for an unknown guardian id.
	ErrGuardianNotFound = errors.New("guardian: guardian not found")
	// ErrShareIndexInUse is returned when CreateInvite is given a
	// shareIndex already assigned to another non-revoked guardian.
	ErrShareIndexInUse = errors.New("guardian: share index already assigned to another guardian")
)
