package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	cryptoService "github.com/checktick/surveyvault/internal/crypto/service"
)

func newContentService() *ContentService {
	envelope := cryptoService.NewEnvelope(cryptoService.NewAEADManager(), cryptoService.NewKDF(), cryptoDomain.AESGCM)
	return NewContent(envelope)
}

func TestContentService_Demographics(t *testing.T) {
	svc := newContentService()
	kek := bytes.Repeat([]byte{0x55}, 32)
	demographics := map[string]any{
		"age_band":  "45-54",
		"ethnicity": "white_british",
		"postcode":  "SW1A",
	}

	t.Run("round trip", func(t *testing.T) {
		blob, err := svc.EncryptDemographics(kek, demographics)
		require.NoError(t, err)

		got, err := svc.DecryptDemographics(kek, blob)
		require.NoError(t, err)
		assert.Equal(t, demographics, got)
	})

	t.Run("blob is not the content AEAD under the raw KEK", func(t *testing.T) {
		// Derived layout carries a per-blob salt, so two seals of the same
		// payload under the same KEK never match.
		a, err := svc.EncryptDemographics(kek, demographics)
		require.NoError(t, err)
		b, err := svc.EncryptDemographics(kek, demographics)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("wrong KEK fails closed", func(t *testing.T) {
		blob, err := svc.EncryptDemographics(kek, demographics)
		require.NoError(t, err)

		other := bytes.Repeat([]byte{0x56}, 32)
		_, err = svc.DecryptDemographics(other, blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered blob fails closed", func(t *testing.T) {
		blob, err := svc.EncryptDemographics(kek, demographics)
		require.NoError(t, err)

		blob[len(blob)-1] ^= 0xFF
		_, err = svc.DecryptDemographics(kek, blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("rejects short KEK", func(t *testing.T) {
		_, err := svc.EncryptDemographics([]byte("short"), demographics)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)

		_, err = svc.DecryptDemographics([]byte("short"), []byte("blob"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("empty dictionary round trips", func(t *testing.T) {
		blob, err := svc.EncryptDemographics(kek, map[string]any{})
		require.NoError(t, err)

		got, err := svc.DecryptDemographics(kek, blob)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestContentService_Fingerprint(t *testing.T) {
	svc := newContentService()
	key := bytes.Repeat([]byte{0x77}, 32)

	t.Run("stable regardless of insertion order", func(t *testing.T) {
		a, err := svc.Fingerprint(key, map[string]any{"age": "30-39", "sex": "f"})
		require.NoError(t, err)
		b, err := svc.Fingerprint(key, map[string]any{"sex": "f", "age": "30-39"})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("differs per content", func(t *testing.T) {
		a, err := svc.Fingerprint(key, map[string]any{"age": "30-39"})
		require.NoError(t, err)
		b, err := svc.Fingerprint(key, map[string]any{"age": "40-49"})
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("differs per key", func(t *testing.T) {
		demographics := map[string]any{"age": "30-39"}
		a, err := svc.Fingerprint(key, demographics)
		require.NoError(t, err)
		b, err := svc.Fingerprint(bytes.Repeat([]byte{0x78}, 32), demographics)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("is 32 bytes", func(t *testing.T) {
		fp, err := svc.Fingerprint(key, map[string]any{"age": "30-39"})
		require.NoError(t, err)
		assert.Len(t, fp, 32)
	})
}
