package domain

import (
	"github.com/checktick/surveyvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors.
// Note the asymmetry required by the unlock contract: setup-time
// misconfiguration surfaces as one of these errors, while unlock-time secret
// mismatch never does (unlock functions fail closed with a boolean instead).
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMalformedBlob indicates an envelope blob is too short to contain the
	// mandatory salt/nonce/tag segments for its layout.
	ErrMalformedBlob = errors.Wrap(errors.ErrInvalidInput, "malformed envelope blob")

	// ErrDecryptionFailed indicates an AEAD open failed. Wrong key, tampered
	// ciphertext and corrupted data are deliberately indistinguishable.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
