// Package party defines the share-index type shared across the wallet
// packages. Guardian, invite and recovery-request identifiers use
// github.com/google/uuid instead, since those are user-facing IDs that
// benefit from the conventional string form; ShareIndex is purely
// internal arithmetic and stays a plain byte.
package party

// ShareIndex is the x-coordinate of a Shamir share, always in {1..255};
// 0 is reserved and forbidden because f(0) is the secret itself.
type ShareIndex = byte
