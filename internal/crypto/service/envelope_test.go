package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
)

func newTestEnvelope(t *testing.T, alg cryptoDomain.Algorithm) *EnvelopeService {
	t.Helper()
	return NewEnvelope(NewAEADManager(), NewKDF(), alg)
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEnvelopeService_SecretRoundTrip(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			env := newTestEnvelope(t, alg)
			plaintext := []byte("patient demographic payload")

			blob, err := env.SealWithSecret([]byte("passphrase"), plaintext)
			require.NoError(t, err)

			// salt || nonce || ct+tag
			expectedLen := cryptoDomain.SaltSize + cryptoDomain.NonceSize +
				len(plaintext) + cryptoDomain.TagSize
			assert.Len(t, blob, expectedLen)

			opened, err := env.OpenWithSecret([]byte("passphrase"), blob)
			require.NoError(t, err)
			assert.Equal(t, plaintext, opened)
		})
	}
}

func TestEnvelopeService_SecretFailClosed(t *testing.T) {
	env := newTestEnvelope(t, cryptoDomain.AESGCM)
	blob, err := env.SealWithSecret([]byte("passphrase"), []byte("data"))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := env.OpenWithSecret([]byte("wrong"), blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := append([]byte(nil), blob...)
		tampered[len(tampered)-1] ^= 0x01
		_, err := env.OpenWithSecret([]byte("passphrase"), tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered salt", func(t *testing.T) {
		tampered := append([]byte(nil), blob...)
		tampered[0] ^= 0x01
		_, err := env.OpenWithSecret([]byte("passphrase"), tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("truncated blob", func(t *testing.T) {
		_, err := env.OpenWithSecret([]byte("passphrase"), blob[:20])
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEnvelopeService_KeyRoundTrip(t *testing.T) {
	env := newTestEnvelope(t, cryptoDomain.AESGCM)
	key := randomKey(t)
	kek := randomKey(t)

	blob, err := env.SealWithKey(key, kek)
	require.NoError(t, err)

	// nonce || ct+tag, no salt for the direct layout
	assert.Len(t, blob, cryptoDomain.NonceSize+len(kek)+cryptoDomain.TagSize)

	opened, err := env.OpenWithKey(key, blob)
	require.NoError(t, err)
	assert.Equal(t, kek, opened)
}

func TestEnvelopeService_KeyFailClosed(t *testing.T) {
	env := newTestEnvelope(t, cryptoDomain.AESGCM)
	key := randomKey(t)

	blob, err := env.SealWithKey(key, []byte("payload"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := env.OpenWithKey(randomKey(t), blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("invalid key size on seal", func(t *testing.T) {
		_, err := env.SealWithKey(make([]byte, 16), []byte("payload"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("short blob", func(t *testing.T) {
		_, err := env.OpenWithKey(key, blob[:10])
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEnvelopeService_FreshRandomnessPerSeal(t *testing.T) {
	env := newTestEnvelope(t, cryptoDomain.AESGCM)

	blob1, err := env.SealWithSecret([]byte("secret"), []byte("data"))
	require.NoError(t, err)
	blob2, err := env.SealWithSecret([]byte("secret"), []byte("data"))
	require.NoError(t, err)

	assert.NotEqual(t, blob1, blob2)
}
