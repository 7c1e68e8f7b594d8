package recovery

import "errors"

var (
	// ErrAlreadyPending is returned by Initiate when a non-terminal
	// request already exists for the wallet.
	ErrAlreadyPending = errors.New("recovery: a request is already pending for this wallet")
	// ErrCooldown is returned by Initiate before the cooldown window
	// since the wallet's last initiation attempt has elapsed.
	ErrCooldown = errors.New("recovery: cooldown period has not elapsed")
	// ErrInvalidState is returned when an operation is attempted from a
	// status that does not permit it.
	ErrInvalidState = errors.New("recovery: request is not in a valid state for this operation")
	// ErrDuplicateGuardian is returned when a guardian has already
	// approved the request.
	ErrDuplicateGuardian = errors.New("recovery: guardian has already approved this request")
	// ErrInvalidScalar is returned when an approval's share value is not
	// a valid nonzero field element.
	ErrInvalidScalar = errors.New("recovery: approval share value is not a valid scalar")
	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("recovery: request not found")
)
