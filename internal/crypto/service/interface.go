// Package service provides the cryptographic primitives for survey key
// protection: AEAD ciphers, key derivation, and the self-describing envelope
// blob format used for every persisted ciphertext.
package service

import (
	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KDF defines key derivation for the two distinct uses in the scheme:
// deriving encryption keys (memory-hard, scrypt) and producing
// verification-only digests (PBKDF2). The two must never be conflated:
// a verification digest is not usable as an encryption key anywhere.
type KDF interface {
	// DeriveKey derives a 32-byte encryption key from a secret and a fresh
	// random 16-byte salt.
	DeriveKey(secret []byte) (key, salt []byte, err error)

	// DeriveKeyWithSalt derives a 32-byte encryption key from a secret and an
	// existing salt, for decrypting previously stored blobs.
	DeriveKeyWithSalt(secret, salt []byte) ([]byte, error)

	// MakeKeyHash produces a verification-only digest and a fresh salt for an
	// opaque key string.
	MakeKeyHash(key []byte) (digest, salt []byte, err error)

	// VerifyKeyHash reports whether key matches a previously stored digest.
	VerifyKeyHash(key, digest, salt []byte) bool
}

// Envelope seals and opens the persisted blob layouts.
//
// Two layouts exist, distinguished by whether the AEAD key was derived from a
// secret or supplied directly:
//
//	derived: salt(16) || nonce(12) || ciphertext+tag
//	direct:  nonce(12) || ciphertext+tag
type Envelope interface {
	// SealWithSecret derives a key from secret with a fresh salt and encrypts
	// plaintext, returning a derived-layout blob.
	SealWithSecret(secret, plaintext []byte) ([]byte, error)

	// OpenWithSecret re-derives the key from secret and the blob's embedded
	// salt and decrypts. Returns ErrDecryptionFailed on any mismatch.
	OpenWithSecret(secret, blob []byte) ([]byte, error)

	// SealWithKey encrypts plaintext directly under a 32-byte key, returning
	// a direct-layout blob.
	SealWithKey(key, plaintext []byte) ([]byte, error)

	// OpenWithKey decrypts a direct-layout blob. Returns ErrDecryptionFailed
	// on any mismatch.
	OpenWithKey(key, blob []byte) ([]byte, error)
}
