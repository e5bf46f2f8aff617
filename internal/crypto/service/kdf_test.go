package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
)

func TestKDFService_DeriveKey(t *testing.T) {
	kdf := NewKDF()

	t.Run("derives 32-byte key with 16-byte salt", func(t *testing.T) {
		key, salt, err := kdf.DeriveKey([]byte("correct horse battery staple"))
		require.NoError(t, err)
		assert.Len(t, key, cryptoDomain.KeySize)
		assert.Len(t, salt, cryptoDomain.SaltSize)
	})

	t.Run("fresh salt per derivation", func(t *testing.T) {
		_, salt1, err := kdf.DeriveKey([]byte("secret"))
		require.NoError(t, err)
		_, salt2, err := kdf.DeriveKey([]byte("secret"))
		require.NoError(t, err)
		assert.NotEqual(t, salt1, salt2)
	})

	t.Run("same secret and salt reproduce the key", func(t *testing.T) {
		secret := []byte("secret")
		key, salt, err := kdf.DeriveKey(secret)
		require.NoError(t, err)

		again, err := kdf.DeriveKeyWithSalt(secret, salt)
		require.NoError(t, err)
		assert.Equal(t, key, again)
	})

	t.Run("different secrets produce different keys", func(t *testing.T) {
		salt := make([]byte, cryptoDomain.SaltSize)
		_, err := rand.Read(salt)
		require.NoError(t, err)

		key1, err := kdf.DeriveKeyWithSalt([]byte("secret one"), salt)
		require.NoError(t, err)
		key2, err := kdf.DeriveKeyWithSalt([]byte("secret two"), salt)
		require.NoError(t, err)
		assert.NotEqual(t, key1, key2)
	})
}

func TestKDFService_KeyHash(t *testing.T) {
	kdf := NewKDF()

	t.Run("verify succeeds for correct key", func(t *testing.T) {
		key := []byte("legacy-opaque-key")
		digest, salt, err := kdf.MakeKeyHash(key)
		require.NoError(t, err)
		assert.Len(t, digest, cryptoDomain.KeySize)
		assert.Len(t, salt, cryptoDomain.SaltSize)

		assert.True(t, kdf.VerifyKeyHash(key, digest, salt))
	})

	t.Run("verify fails for wrong key", func(t *testing.T) {
		digest, salt, err := kdf.MakeKeyHash([]byte("legacy-opaque-key"))
		require.NoError(t, err)

		assert.False(t, kdf.VerifyKeyHash([]byte("other-key"), digest, salt))
	})

	t.Run("verify fails for empty digest or salt", func(t *testing.T) {
		assert.False(t, kdf.VerifyKeyHash([]byte("key"), nil, []byte("salt")))
		assert.False(t, kdf.VerifyKeyHash([]byte("key"), []byte("digest"), nil))
	})
}

func TestNormalizePhrase(t *testing.T) {
	t.Run("idempotent across cosmetic differences", func(t *testing.T) {
		assert.Equal(t, "a b c", NormalizePhrase(" A b  C "))
		assert.Equal(t, NormalizePhrase("a b c"), NormalizePhrase("  A   B   C  "))
	})

	t.Run("handles tabs and newlines", func(t *testing.T) {
		assert.Equal(t, "alpha beta", NormalizePhrase("alpha\t\nbeta"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", NormalizePhrase("   "))
	})
}

func TestNormalizePassword(t *testing.T) {
	t.Run("preserves case", func(t *testing.T) {
		assert.Equal(t, "MyPass Word", NormalizePassword("  MyPass   Word  "))
	})
}

func TestNormalizedDerivationEquivalence(t *testing.T) {
	kdf := NewKDF()
	salt := make([]byte, cryptoDomain.SaltSize)

	key1, err := kdf.DeriveKeyWithSalt([]byte(NormalizePhrase(" A b  C ")), salt)
	require.NoError(t, err)
	key2, err := kdf.DeriveKeyWithSalt([]byte(NormalizePhrase("a b c")), salt)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
}
