package service

import (
	"crypto/rand"
	"fmt"
	"strings"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	cryptoService "github.com/checktick/surveyvault/internal/crypto/service"
	"github.com/checktick/surveyvault/internal/recovery"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// KeyWrapService implements KeyWrapper over the envelope and KDF services.
//
// All wrap paths protect the same KEK; the survey's plaintext KEK exists only
// in the caller's memory between a generation or unlock and the end of the
// request. Setup raises on misconfiguration, unlock returns ok=false on any
// mismatch: setup errors are programmer/ops defects, wrong secrets at unlock
// are expected end-user events.
type KeyWrapService struct {
	envelope    cryptoService.Envelope
	kdf         cryptoService.KDF
	oidcSecrets OIDCSecretDeriver
}

// NewKeyWrap creates a KeyWrapService.
func NewKeyWrap(
	envelope cryptoService.Envelope,
	kdf cryptoService.KDF,
	oidcSecrets OIDCSecretDeriver,
) *KeyWrapService {
	return &KeyWrapService{
		envelope:    envelope,
		kdf:         kdf,
		oidcSecrets: oidcSecrets,
	}
}

// GenerateKek returns a fresh random 32-byte survey KEK.
func (s *KeyWrapService) GenerateKek() ([]byte, error) {
	kek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(kek); err != nil {
		return nil, fmt.Errorf("failed to generate KEK: %w", err)
	}
	return kek, nil
}

// SetDualEncryption installs the password and recovery wraps together, plus
// the recovery hint and the backward-compatible legacy hash of the password.
// Recovery is the mandatory fallback whenever a password path exists.
func (s *KeyWrapService) SetDualEncryption(
	state *surveysDomain.SurveyEncryption,
	kek []byte,
	password string,
	recoveryWords []string,
) error {
	if len(kek) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	phrase := cryptoService.NormalizePhrase(joinWords(recoveryWords))
	normalizedPassword := cryptoService.NormalizePassword(password)

	wrappedPassword, err := s.envelope.SealWithSecret([]byte(normalizedPassword), kek)
	if err != nil {
		return fmt.Errorf("failed to wrap KEK under password: %w", err)
	}

	wrappedRecovery, err := s.envelope.SealWithSecret([]byte(phrase), kek)
	if err != nil {
		return fmt.Errorf("failed to wrap KEK under recovery phrase: %w", err)
	}

	digest, salt, err := s.kdf.MakeKeyHash([]byte(normalizedPassword))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	state.WrappedPassword = wrappedPassword
	state.WrappedRecovery = wrappedRecovery
	state.RecoveryHint = recovery.CreateHint(recoveryWords)
	state.LegacyKeyHash = digest
	state.LegacyKeySalt = salt
	return nil
}

// SetRecoveryEncryption installs the recovery wrap alone, without a password
// counterpart. Used when an SSO user opts into a recovery fallback.
func (s *KeyWrapService) SetRecoveryEncryption(
	state *surveysDomain.SurveyEncryption,
	kek []byte,
	recoveryWords []string,
) error {
	if len(kek) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	phrase := cryptoService.NormalizePhrase(joinWords(recoveryWords))
	wrapped, err := s.envelope.SealWithSecret([]byte(phrase), kek)
	if err != nil {
		return fmt.Errorf("failed to wrap KEK under recovery phrase: %w", err)
	}

	state.WrappedRecovery = wrapped
	state.RecoveryHint = recovery.CreateHint(recoveryWords)
	return nil
}

// SetOrgEncryption installs the organization wrap. The 32-byte org master
// key is used directly as the AEAD key, with no derivation salt.
func (s *KeyWrapService) SetOrgEncryption(
	state *surveysDomain.SurveyEncryption,
	kek []byte,
	org *surveysDomain.Organization,
) error {
	if org == nil || !org.HasMasterKey() {
		return surveysDomain.ErrMissingMasterKey
	}
	if len(org.MasterKey) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}
	if len(kek) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	wrapped, err := s.envelope.SealWithKey(org.MasterKey, kek)
	if err != nil {
		return fmt.Errorf("failed to wrap KEK under org master key: %w", err)
	}

	state.WrappedOrg = wrapped
	state.OrganizationID.UUID = org.ID
	state.OrganizationID.Valid = true
	return nil
}

// SetOIDCEncryption installs the OIDC identity wrap.
func (s *KeyWrapService) SetOIDCEncryption(
	state *surveysDomain.SurveyEncryption,
	kek []byte,
	identity surveysDomain.OIDCIdentity,
) error {
	if identity.IsZero() {
		return surveysDomain.ErrMissingOIDCIdentity
	}
	if len(kek) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	secret := s.oidcSecrets.WrapSecret(identity)
	defer cryptoDomain.Zero(secret)

	wrapped, err := s.envelope.SealWithSecret(secret, kek)
	if err != nil {
		return fmt.Errorf("failed to wrap KEK under OIDC secret: %w", err)
	}

	state.WrappedOIDC = wrapped
	return nil
}

// UnlockWithPassword attempts the password wrap.
func (s *KeyWrapService) UnlockWithPassword(
	state *surveysDomain.SurveyEncryption, password string,
) ([]byte, bool) {
	if len(state.WrappedPassword) == 0 {
		return nil, false
	}
	normalized := cryptoService.NormalizePassword(password)
	kek, err := s.envelope.OpenWithSecret([]byte(normalized), state.WrappedPassword)
	if err != nil {
		return nil, false
	}
	return kek, true
}

// UnlockWithRecovery attempts the recovery phrase wrap after normalization.
func (s *KeyWrapService) UnlockWithRecovery(
	state *surveysDomain.SurveyEncryption, phrase string,
) ([]byte, bool) {
	if len(state.WrappedRecovery) == 0 {
		return nil, false
	}
	normalized := cryptoService.NormalizePhrase(phrase)
	kek, err := s.envelope.OpenWithSecret([]byte(normalized), state.WrappedRecovery)
	if err != nil {
		return nil, false
	}
	return kek, true
}

// UnlockWithOrgKey attempts the organization wrap. Wrong organization,
// missing master key and tag failure all collapse to ok=false so callers
// cannot enumerate which organization a survey belongs to.
func (s *KeyWrapService) UnlockWithOrgKey(
	state *surveysDomain.SurveyEncryption, org *surveysDomain.Organization,
) ([]byte, bool) {
	if len(state.WrappedOrg) == 0 || org == nil || !org.HasMasterKey() {
		return nil, false
	}
	if len(org.MasterKey) != cryptoDomain.KeySize {
		return nil, false
	}
	if state.OrganizationID.Valid && state.OrganizationID.UUID != org.ID {
		return nil, false
	}
	kek, err := s.envelope.OpenWithKey(org.MasterKey, state.WrappedOrg)
	if err != nil {
		return nil, false
	}
	return kek, true
}

// UnlockWithOIDC attempts the OIDC wrap for the given identity.
func (s *KeyWrapService) UnlockWithOIDC(
	state *surveysDomain.SurveyEncryption, identity surveysDomain.OIDCIdentity,
) ([]byte, bool) {
	if len(state.WrappedOIDC) == 0 || identity.IsZero() {
		return nil, false
	}
	secret := s.oidcSecrets.WrapSecret(identity)
	defer cryptoDomain.Zero(secret)

	kek, err := s.envelope.OpenWithSecret(secret, state.WrappedOIDC)
	if err != nil {
		return nil, false
	}
	return kek, true
}

// VerifyLegacyKey checks a submitted opaque key against the deprecated
// verification-only record.
func (s *KeyWrapService) VerifyLegacyKey(
	state *surveysDomain.SurveyEncryption, key []byte,
) bool {
	if !state.HasLegacyKeyHash() {
		return false
	}
	return s.kdf.VerifyKeyHash(key, state.LegacyKeyHash, state.LegacyKeySalt)
}

// CanUnlockAutomatically reports whether identity can unlock the survey
// without any user-supplied secret.
func (s *KeyWrapService) CanUnlockAutomatically(
	state *surveysDomain.SurveyEncryption, identity surveysDomain.OIDCIdentity,
) bool {
	_, ok := s.UnlockWithOIDC(state, identity)
	return ok
}

// joinWords joins recovery words with single spaces.
func joinWords(words []string) string {
	return strings.Join(words, " ")
}
