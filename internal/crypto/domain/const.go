// Package domain defines the core cryptographic domain models for survey key
// protection.
//
// The scheme is a per-survey envelope hierarchy: a random 32-byte KEK is
// wrapped independently under each installed unlock path (password, recovery
// phrase, organization master key, OIDC identity secret) and is itself used,
// through a derived sub-key, to encrypt demographic content. The KEK is never
// persisted in plaintext; only envelope blobs are stored.
package domain

// Algorithm represents the AEAD algorithm used for envelope encryption.
//
// Both supported algorithms provide authenticated encryption with a 256-bit
// key, a 12-byte nonce and a 16-byte tag. AESGCM is the default on servers
// with AES-NI; ChaCha20 is available for platforms without it.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Fixed sizes of the persisted envelope byte layouts. These values are part
// of the stored data format and must not change.
const (
	// KeySize is the length in bytes of every symmetric key in the scheme:
	// KEKs, derived wrapping keys, and organization master keys.
	KeySize = 32

	// SaltSize is the length in bytes of KDF salts prepended to
	// derivation-based envelope blobs.
	SaltSize = 16

	// NonceSize is the length in bytes of AEAD nonces.
	NonceSize = 12

	// TagSize is the length in bytes of the AEAD authentication tag appended
	// to every ciphertext.
	TagSize = 16
)

// Scrypt parameters for deriving encryption keys from low-entropy secrets.
// Chosen so a single derivation costs tens of milliseconds: slow enough to
// resist brute force, fast enough for interactive unlock.
const (
	ScryptN = 1 << 14
	ScryptR = 8
	ScryptP = 1
)

// PBKDF2Iterations is the iteration count for the verification-only key hash
// (legacy unlock path). The digest is never used as an encryption key.
const PBKDF2Iterations = 200_000
