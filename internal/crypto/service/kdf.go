package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
)

// KDFService implements the KDF interface.
//
// Encryption keys come from scrypt (memory-hard, so offline brute force of a
// stolen blob is expensive). Verification digests come from PBKDF2-HMAC-SHA256
// with a high iteration count; they prove knowledge of a key but are never
// used to decrypt anything.
type KDFService struct{}

// NewKDF creates a new KDFService.
func NewKDF() *KDFService {
	return &KDFService{}
}

// DeriveKey derives a 32-byte encryption key from secret using scrypt and a
// fresh random 16-byte salt. Returns the key and the salt.
func (k *KDFService) DeriveKey(secret []byte) (key, salt []byte, err error) {
	salt = make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err = k.DeriveKeyWithSalt(secret, salt)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

// DeriveKeyWithSalt derives a 32-byte encryption key from secret and an
// existing salt. Used when opening previously stored blobs.
func (k *KDFService) DeriveKeyWithSalt(secret, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(
		secret,
		salt,
		cryptoDomain.ScryptN,
		cryptoDomain.ScryptR,
		cryptoDomain.ScryptP,
		cryptoDomain.KeySize,
	)
	if err != nil {
		return nil, fmt.Errorf("scrypt derivation failed: %w", err)
	}
	return key, nil
}

// MakeKeyHash produces a PBKDF2-HMAC-SHA256 verification digest for an opaque
// key, with a fresh random salt. The digest supports equality checks only.
func (k *KDFService) MakeKeyHash(key []byte) (digest, salt []byte, err error) {
	salt = make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	digest = pbkdf2.Key(key, salt, cryptoDomain.PBKDF2Iterations, cryptoDomain.KeySize, sha256.New)
	return digest, salt, nil
}

// VerifyKeyHash reports whether key matches digest under salt, in constant time.
func (k *KDFService) VerifyKeyHash(key, digest, salt []byte) bool {
	if len(digest) == 0 || len(salt) == 0 {
		return false
	}
	candidate := pbkdf2.Key(key, salt, cryptoDomain.PBKDF2Iterations, cryptoDomain.KeySize, sha256.New)
	return hmac.Equal(candidate, digest)
}

// NormalizePhrase canonicalizes a recovery phrase: trimmed, lowercased, with
// internal whitespace collapsed to single spaces. Cosmetic differences in
// user input must never change the derived key.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// NormalizePassword canonicalizes a password: trimmed with internal
// whitespace collapsed, but case-preserving.
func NormalizePassword(password string) string {
	return strings.Join(strings.Fields(password), " ")
}
