// Package service implements the survey key protection logic: multi-path KEK
// wrapping and unwrapping, the OIDC wrapping-secret derivation, and the
// demographic content encryption built on top of the survey KEK.
package service

import (
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// KeyWrapper manages the per-survey wrap state. Setup operations install
// envelope copies of the same KEK and raise on misconfiguration; unlock
// operations fail closed, returning ok=false for every mismatch cause.
type KeyWrapper interface {
	// GenerateKek returns a fresh random 32-byte survey KEK.
	GenerateKek() ([]byte, error)

	// SetDualEncryption installs the paired password and recovery wraps.
	// Password wraps are never installed without a recovery wrap; the pairing
	// is a policy invariant of this component, not of its callers.
	SetDualEncryption(state *surveysDomain.SurveyEncryption, kek []byte, password string, recoveryWords []string) error

	// SetRecoveryEncryption installs the recovery wrap alone, for SSO users
	// who opt into a recovery fallback without a password. The reverse
	// pairing rule does not apply: recovery without password is a valid
	// state, password without recovery is not.
	SetRecoveryEncryption(state *surveysDomain.SurveyEncryption, kek []byte, recoveryWords []string) error

	// SetOrgEncryption installs the organization master key wrap.
	SetOrgEncryption(state *surveysDomain.SurveyEncryption, kek []byte, org *surveysDomain.Organization) error

	// SetOIDCEncryption installs the OIDC identity wrap.
	SetOIDCEncryption(state *surveysDomain.SurveyEncryption, kek []byte, identity surveysDomain.OIDCIdentity) error

	// UnlockWithPassword attempts the password wrap.
	UnlockWithPassword(state *surveysDomain.SurveyEncryption, password string) ([]byte, bool)

	// UnlockWithRecovery attempts the recovery phrase wrap.
	UnlockWithRecovery(state *surveysDomain.SurveyEncryption, phrase string) ([]byte, bool)

	// UnlockWithOrgKey attempts the organization wrap.
	UnlockWithOrgKey(state *surveysDomain.SurveyEncryption, org *surveysDomain.Organization) ([]byte, bool)

	// UnlockWithOIDC attempts the OIDC identity wrap.
	UnlockWithOIDC(state *surveysDomain.SurveyEncryption, identity surveysDomain.OIDCIdentity) ([]byte, bool)

	// VerifyLegacyKey checks a submitted opaque key against the deprecated
	// verification-only record. It can never produce a decryption key.
	VerifyLegacyKey(state *surveysDomain.SurveyEncryption, key []byte) bool

	// CanUnlockAutomatically reports whether the given identity can unlock
	// the survey without any user-supplied secret.
	CanUnlockAutomatically(state *surveysDomain.SurveyEncryption, identity surveysDomain.OIDCIdentity) bool
}

// OIDCSecretDeriver derives the stable per-identity wrapping secret.
type OIDCSecretDeriver interface {
	// WrapSecret returns the wrapping secret for an identity. Stable across
	// logins for the same (provider, subject); not reconstructible from
	// stored wrap blobs without the server-side pepper.
	WrapSecret(identity surveysDomain.OIDCIdentity) []byte
}

// ContentCipher encrypts and fingerprints demographic payloads under a
// survey KEK.
type ContentCipher interface {
	// EncryptDemographics seals a demographic dictionary under a sub-key
	// derived from the KEK.
	EncryptDemographics(kek []byte, demographics map[string]any) ([]byte, error)

	// DecryptDemographics opens a demographics blob.
	DecryptDemographics(kek []byte, blob []byte) (map[string]any, error)

	// Fingerprint returns a stable HMAC-SHA256 over the canonical form of a
	// demographic dictionary, for duplicate-response detection.
	Fingerprint(key []byte, demographics map[string]any) ([]byte, error)
}
