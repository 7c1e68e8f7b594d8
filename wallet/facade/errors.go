package facade

import "errors"

// ErrConfigInvalid is returned by New/Validate when the sharing-layout
// inequalities are violated.
var ErrConfigInvalid = errors.New("facade: invalid configuration")

// ErrNotSetup is returned by any operation that needs a loaded wallet
// (signing, recovery) before Setup or Restore has run.
var ErrNotSetup = errors.New("facade: wallet not set up or restored")

// ErrGuardianDescriptorCountMismatch is returned by Setup when the
// number of guardian descriptors does not equal the number of
// non-owner shares implied by the configuration.
var ErrGuardianDescriptorCountMismatch = errors.New("facade: guardian descriptor count does not match totalShares - ownerShares")
