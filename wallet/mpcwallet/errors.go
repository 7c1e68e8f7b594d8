package mpcwallet

import "errors"

var (
	// ErrConfigInvalid is returned when threshold/total constraints are violated.
	ErrConfigInvalid = errors.New("mpcwallet: invalid threshold/total configuration")
	// ErrPasswordCountMismatch is returned when the password list length
	// does not match the share count.
	ErrPasswordCountMismatch = errors.New("mpcwallet: password count does not match share count")
	// ErrInvalidScalar is returned by ImportKey for a zero or out-of-range scalar.
	ErrInvalidScalar = errors.New("mpcwallet: invalid scalar")
	// ErrAlreadyCollected is returned by AddShare for a share index already held.
	ErrAlreadyCollected = errors.New("mpcwallet: share index already collected")
	// ErrWrongWallet is returned by AddShare when the envelope's keyId
	// does not match the loaded wallet state.
	ErrWrongWallet = errors.New("mpcwallet: share belongs to a different wallet")
	// ErrNotEnoughShares is returned by any Sign* call below threshold.
	ErrNotEnoughShares = errors.New("mpcwallet: not enough shares collected to sign")
	// ErrShareCorrupted is returned when a share's value does not match
	// the public commitment recorded for its index at setup time.
	ErrShareCorrupted = errors.New("mpcwallet: share value does not match its recorded public commitment")
)
