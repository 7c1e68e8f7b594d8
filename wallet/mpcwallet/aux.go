package mpcwallet

import (
	"github.com/luxfi/vault-core/pkg/ecdsasig"
	"github.com/luxfi/vault-core/pkg/party"
	"github.com/luxfi/vault-core/pkg/scalar"
)

// verifyShareProvenance rejects a share whose value does not match the
// public commitment g^{y_i} recorded for its index at setup time. A
// corrupted share would otherwise pass silently through shamir.Combine
// and produce a wrong key, detectable only by a failed signature.
//
// A wallet state loaded without PublicShares (for example one restored
// from a snapshot that only persisted the public key and address) skips
// the check rather than rejecting every share.
func verifyShareProvenance(state WalletState, index party.ShareIndex, y scalar.Scalar) error {
	if state.PublicShares == nil {
		return nil
	}
	expected, ok := state.PublicShares[index]
	if !ok {
		return nil
	}
	actual := ecdsasig.PublicKeyFromScalar(y)
	if !actual.IsEqual(expected) {
		return ErrShareCorrupted
	}
	return nil
}
