package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	cryptoService "github.com/checktick/surveyvault/internal/crypto/service"
)

// ContentService encrypts demographic dictionaries under a survey KEK. The
// KEK is never used as the content AEAD key directly: each seal derives a
// fresh sub-key from the KEK with a random salt, so content blobs and wrap
// blobs never share an AEAD key.
type ContentService struct {
	envelope cryptoService.Envelope
}

// NewContent creates a ContentService.
func NewContent(envelope cryptoService.Envelope) *ContentService {
	return &ContentService{envelope: envelope}
}

// EncryptDemographics serializes and seals a demographic dictionary.
func (s *ContentService) EncryptDemographics(kek []byte, demographics map[string]any) ([]byte, error) {
	if len(kek) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	payload, err := json.Marshal(demographics)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize demographics: %w", err)
	}
	blob, err := s.envelope.SealWithSecret(kek, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt demographics: %w", err)
	}
	return blob, nil
}

// DecryptDemographics opens a demographics blob produced by
// EncryptDemographics.
func (s *ContentService) DecryptDemographics(kek []byte, blob []byte) (map[string]any, error) {
	if len(kek) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	payload, err := s.envelope.OpenWithSecret(kek, blob)
	if err != nil {
		return nil, err
	}
	var demographics map[string]any
	if err := json.Unmarshal(payload, &demographics); err != nil {
		return nil, fmt.Errorf("failed to deserialize demographics: %w", err)
	}
	return demographics, nil
}

// Fingerprint returns HMAC-SHA256 over the canonical JSON encoding of a
// demographic dictionary. Map keys serialize in sorted order, so two
// dictionaries with the same entries fingerprint identically regardless of
// insertion order.
func (s *ContentService) Fingerprint(key []byte, demographics map[string]any) ([]byte, error) {
	payload, err := json.Marshal(demographics)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize demographics: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return mac.Sum(nil), nil
}
