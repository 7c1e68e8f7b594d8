package envelope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/vault-core/pkg/envelope"
)

// Seal/open round-trip, and the wrong password (case matters) fails.
func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("abandon abandon about")

	env, err := envelope.Seal(plaintext, "password")
	require.NoError(t, err)

	got, err := envelope.Open(env, "password")
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	_, err = envelope.Open(env, "Password")
	assert.ErrorIs(t, err, envelope.ErrUndecryptable)
}

// Two seals of the same plaintext/password differ.
func TestSealIsNonDeterministic(t *testing.T) {
	plaintext := []byte("same plaintext")

	a, err := envelope.Seal(plaintext, "hunter2")
	require.NoError(t, err)
	b, err := envelope.Seal(plaintext, "hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestOpenRejectsUnknownVersion(t *testing.T) {
	env, err := envelope.Seal([]byte("x"), "pw")
	require.NoError(t, err)
	env.Version = 99

	_, err = envelope.Open(env, "pw")
	assert.ErrorIs(t, err, envelope.ErrBadVersion)
}

func TestSerializeDeserializeWireFormat(t *testing.T) {
	env, err := envelope.Seal([]byte("secret share"), "pw")
	require.NoError(t, err)

	data, err := envelope.Serialize(env)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"ciphertext"`)
	assert.Contains(t, string(data), `"nonce"`)
	assert.Contains(t, string(data), `"salt"`)
	assert.Contains(t, string(data), `"version":1`)

	roundTripped, err := envelope.Deserialize(data)
	require.NoError(t, err)

	got, err := envelope.Open(roundTripped, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret share"), got)
}

func TestSealAllOpenAllConcurrent(t *testing.T) {
	plaintexts := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	passwords := []string{"pw1", "pw2", "pw3"}

	envs, err := envelope.SealAll(plaintexts, passwords)
	require.NoError(t, err)
	require.Len(t, envs, 3)

	opened, err := envelope.OpenAll(envs, passwords)
	require.NoError(t, err)
	for i, p := range plaintexts {
		assert.Equal(t, p, opened[i])
	}
}

func TestOpenAllFailsOnAnyWrongPassword(t *testing.T) {
	plaintexts := [][]byte{[]byte("a"), []byte("b")}
	passwords := []string{"pw1", "pw2"}

	envs, err := envelope.SealAll(plaintexts, passwords)
	require.NoError(t, err)

	_, err = envelope.OpenAll(envs, []string{"pw1", "wrong"})
	assert.ErrorIs(t, err, envelope.ErrUndecryptable)
}
