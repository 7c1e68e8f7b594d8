// Package zero provides secret zeroization: derived KDF keys
// (pkg/envelope), collected shares and reconstructed scalars
// (wallet/mpcwallet), and cleared approval share values
// (wallet/recovery) are all overwritten through here before release.
package zero

import (
	"runtime"

	"github.com/luxfi/vault-core/pkg/scalar"
)

// Bytes overwrites every byte of b with zero, then pins b with
// runtime.KeepAlive so the overwrite cannot be reordered past the last
// use of the buffer by an optimizing compiler.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Scalar overwrites *s with the zero scalar. Used to wipe reconstructed
// private scalars and collected shares as soon as a signing operation
// (or the caller's Lock()) is done with them.
func Scalar(s *scalar.Scalar) {
	*s = scalar.New()
	runtime.KeepAlive(s)
}
