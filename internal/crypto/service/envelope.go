package service

import (
	"fmt"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
)

// EnvelopeService implements the Envelope interface over an AEADManager and a KDF.
//
// Blob layouts are fixed byte concatenations and are part of the persisted
// data format:
//
//	derived (password/recovery/OIDC wraps, demographics):
//	    salt(16) || nonce(12) || ciphertext+tag
//	direct (organization master key wraps):
//	    nonce(12) || ciphertext+tag
//
// Opening a blob fails closed: every mismatch (wrong secret, wrong key,
// truncated or tampered blob) collapses to ErrDecryptionFailed so callers
// cannot build an oracle out of the failure mode.
type EnvelopeService struct {
	aeadManager AEADManager
	kdf         KDF
	algorithm   cryptoDomain.Algorithm
}

// NewEnvelope creates an EnvelopeService sealing with the given algorithm.
func NewEnvelope(aeadManager AEADManager, kdf KDF, alg cryptoDomain.Algorithm) *EnvelopeService {
	return &EnvelopeService{
		aeadManager: aeadManager,
		kdf:         kdf,
		algorithm:   alg,
	}
}

// SealWithSecret derives a fresh key from secret and encrypts plaintext,
// producing a derived-layout blob.
func (e *EnvelopeService) SealWithSecret(secret, plaintext []byte) ([]byte, error) {
	key, salt, err := e.kdf.DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	aead, err := e.aeadManager.CreateCipher(key, e.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to seal envelope: %w", err)
	}

	blob := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// OpenWithSecret re-derives the key from secret and the embedded salt and
// decrypts a derived-layout blob.
func (e *EnvelopeService) OpenWithSecret(secret, blob []byte) ([]byte, error) {
	const header = cryptoDomain.SaltSize + cryptoDomain.NonceSize
	if len(blob) < header+cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	salt := blob[:cryptoDomain.SaltSize]
	nonce := blob[cryptoDomain.SaltSize:header]
	ciphertext := blob[header:]

	key, err := e.kdf.DeriveKeyWithSalt(secret, salt)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(key)

	return e.open(key, nonce, ciphertext)
}

// SealWithKey encrypts plaintext directly under a 32-byte key, producing a
// direct-layout blob. Used when the key needs no derivation, e.g. an
// organization master key.
func (e *EnvelopeService) SealWithKey(key, plaintext []byte) ([]byte, error) {
	aead, err := e.aeadManager.CreateCipher(key, e.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to seal envelope: %w", err)
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// OpenWithKey decrypts a direct-layout blob under a 32-byte key.
func (e *EnvelopeService) OpenWithKey(key, blob []byte) ([]byte, error) {
	if len(blob) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	nonce := blob[:cryptoDomain.NonceSize]
	ciphertext := blob[cryptoDomain.NonceSize:]

	return e.open(key, nonce, ciphertext)
}

// open runs the AEAD decryption, collapsing every failure to ErrDecryptionFailed.
func (e *EnvelopeService) open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := e.aeadManager.CreateCipher(key, e.algorithm)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
