package facade

// Config binds the social-recovery sharing layout: how many shares
// exist, how many reconstruct, how many the owner keeps, and the
// recovery timing windows.
type Config struct {
	TotalShares    int
	Threshold      int
	OwnerShares    int
	TimelockHours  int
	ExpirationDays int
}

// Validate enforces the configuration invariants:
//
//	threshold >= 2
//	ownerShares >= 1
//	totalShares >= threshold
//	ownerShares <= totalShares - 1
//	totalShares - ownerShares >= threshold
//
// The last inequality requires that guardians alone can reach the
// threshold, which is what makes owner-free recovery possible at all.
func (c Config) Validate() error {
	if c.Threshold < 2 {
		return ErrConfigInvalid
	}
	if c.OwnerShares < 1 {
		return ErrConfigInvalid
	}
	if c.TotalShares < c.Threshold {
		return ErrConfigInvalid
	}
	if c.OwnerShares > c.TotalShares-1 {
		return ErrConfigInvalid
	}
	if c.TotalShares-c.OwnerShares < c.Threshold {
		return ErrConfigInvalid
	}
	return nil
}

// guardianShareCount is the number of shares partitioned off to
// guardians after the owner takes the first OwnerShares.
func (c Config) guardianShareCount() int {
	return c.TotalShares - c.OwnerShares
}
