// Package envelope implements password-based authenticated envelope
// encryption: scrypt key derivation followed by XSalsa20-Poly1305
// sealing, with a versioned, JSON-serializable wire format. Used to
// protect mnemonics and key shares at rest.
package envelope

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/vault-core/internal/zero"
)

const (
	// CurrentVersion is the only envelope version this release knows how
	// to produce and open. The version field exists so the KDF
	// parameters can migrate without breaking stored envelopes.
	CurrentVersion = 1

	saltLen  = 32
	nonceLen = 24
	keyLen   = 32

	// scrypt parameters, fixed at version 1.
	scryptN = 1 << 18
	scryptR = 8
	scryptP = 1
)

var (
	// ErrBadVersion is returned by Open for an envelope with an unknown version.
	ErrBadVersion = errors.New("envelope: unknown version")
	// ErrUndecryptable is returned by Open when the MAC check fails:
	// either the password was wrong or the ciphertext was tampered with.
	// Both causes are indistinguishable to the caller.
	ErrUndecryptable = errors.New("envelope: undecryptable (wrong password or corrupted data)")
)

// Envelope is the authenticated-encryption record: ciphertext, nonce,
// salt and version, bound together by the AEAD tag.
type Envelope struct {
	Ciphertext []byte
	Nonce      [nonceLen]byte
	Salt       [saltLen]byte
	Version    int
}

// Seal derives a key from password and a fresh random salt via scrypt,
// then seals plaintext with XSalsa20-Poly1305 under a fresh random
// nonce. Both salt and nonce are freshly sampled every call, so sealing
// the same plaintext twice under the same password yields different
// envelopes.
func Seal(plaintext []byte, password string) (Envelope, error) {
	var env Envelope
	env.Version = CurrentVersion

	if _, err := io.ReadFull(rand.Reader, env.Salt[:]); err != nil {
		return Envelope{}, fmt.Errorf("envelope: sampling salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, env.Nonce[:]); err != nil {
		return Envelope{}, fmt.Errorf("envelope: sampling nonce: %w", err)
	}

	key, err := deriveKey(password, env.Salt[:])
	if err != nil {
		return Envelope{}, err
	}
	defer zero.Bytes(key)

	var keyArr [keyLen]byte
	copy(keyArr[:], key)
	defer zero.Bytes(keyArr[:])

	env.Ciphertext = secretbox.Seal(nil, plaintext, &env.Nonce, &keyArr)
	return env, nil
}

// Open derives the key from password and the envelope's stored salt,
// then verifies and decrypts the ciphertext. The Poly1305 tag check
// inside secretbox.Open is constant-time with respect to the key, so no
// additional comparison is layered on top of it.
func Open(env Envelope, password string) ([]byte, error) {
	if env.Version != CurrentVersion {
		return nil, ErrBadVersion
	}

	key, err := deriveKey(password, env.Salt[:])
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(key)

	var keyArr [keyLen]byte
	copy(keyArr[:], key)
	defer zero.Bytes(keyArr[:])

	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &env.Nonce, &keyArr)
	if !ok {
		return nil, ErrUndecryptable
	}
	return plaintext, nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("envelope: scrypt: %w", err)
	}
	return key, nil
}

// SealAll seals each plaintext under its corresponding password,
// fanning the N independent scrypt calls out across a worker pool sized
// to GOMAXPROCS. Each individual Seal remains an atomic operation from
// its caller's perspective; SealAll only runs several of them
// concurrently and collects the results in input order.
//
// len(plaintexts) must equal len(passwords); used by wallet/mpcwallet
// to seal all shares of a newly created wallet in parallel.
func SealAll(plaintexts [][]byte, passwords []string) ([]Envelope, error) {
	if len(plaintexts) != len(passwords) {
		return nil, errors.New("envelope: plaintexts and passwords length mismatch")
	}

	envs := make([]Envelope, len(plaintexts))
	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))

	for i := range plaintexts {
		i := i
		g.Go(func() error {
			e, err := Seal(plaintexts[i], passwords[i])
			if err != nil {
				return err
			}
			envs[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return envs, nil
}

// OpenAll is the concurrent counterpart of SealAll, used by the facade
// to unlock every owner share at once.
func OpenAll(envs []Envelope, passwords []string) ([][]byte, error) {
	if len(envs) != len(passwords) {
		return nil, errors.New("envelope: envelopes and passwords length mismatch")
	}

	out := make([][]byte, len(envs))
	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))

	for i := range envs {
		i := i
		g.Go(func() error {
			p, err := Open(envs[i], passwords[i])
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// wireEnvelope is the JSON-safe shadow of Envelope:
//
//	{ "ciphertext": <base64>, "nonce": <base64>, "salt": <base64>, "version": 1 }
//
// Base64 uses the standard alphabet with padding. Decoded lengths are
// checked on the way in: salt 32, nonce 24.
type wireEnvelope struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Salt       string `json:"salt"`
	Version    int    `json:"version"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{
		Ciphertext: base64.StdEncoding.EncodeToString(e.Ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(e.Nonce[:]),
		Salt:       base64.StdEncoding.EncodeToString(e.Salt[:]),
		Version:    e.Version,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ct, err := base64.StdEncoding.DecodeString(w.Ciphertext)
	if err != nil {
		return fmt.Errorf("envelope: decoding ciphertext: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(w.Nonce)
	if err != nil {
		return fmt.Errorf("envelope: decoding nonce: %w", err)
	}
	if len(nonce) != nonceLen {
		return fmt.Errorf("envelope: nonce must be %d bytes, got %d", nonceLen, len(nonce))
	}
	salt, err := base64.StdEncoding.DecodeString(w.Salt)
	if err != nil {
		return fmt.Errorf("envelope: decoding salt: %w", err)
	}
	if len(salt) != saltLen {
		return fmt.Errorf("envelope: salt must be %d bytes, got %d", saltLen, len(salt))
	}

	e.Ciphertext = ct
	copy(e.Nonce[:], nonce)
	copy(e.Salt[:], salt)
	e.Version = w.Version
	return nil
}

// Serialize encodes the envelope to its JSON wire form.
func Serialize(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// Deserialize decodes an envelope from its JSON wire form.
func Deserialize(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
