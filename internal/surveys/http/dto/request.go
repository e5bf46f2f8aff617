// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	customValidation "github.com/checktick/surveyvault/internal/validation"
)

// oidcProviderRule accepts only the supported SSO providers.
var oidcProviderRule = validation.In(
	string(surveysDomain.ProviderGoogle),
	string(surveysDomain.ProviderAzure),
)

// SetupDualEncryptionRequest contains the parameters for installing
// password+recovery encryption on a survey.
type SetupDualEncryptionRequest struct {
	Password       string `json:"password" binding:"required"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Validate checks if the setup request is valid.
func (r *SetupDualEncryptionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password,
			validation.Required,
			customValidation.PasswordLength,
		),
		validation.Field(&r.OrganizationID, validation.When(r.OrganizationID != "", validation.Required, validation.Length(36, 36))),
	)
}

// SetupSSOEncryptionRequest contains the parameters for installing OIDC
// encryption on a survey. WithRecovery opts an individual SSO user into an
// additional recovery-phrase wrap.
type SetupSSOEncryptionRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	Subject        string `json:"subject" binding:"required"`
	OrganizationID string `json:"organization_id,omitempty"`
	WithRecovery   bool   `json:"with_recovery,omitempty"`
}

// Validate checks if the SSO setup request is valid.
func (r *SetupSSOEncryptionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, validation.Length(36, 36)),
		validation.Field(&r.Provider, validation.Required, oidcProviderRule),
		validation.Field(&r.Subject, validation.Required, customValidation.NotBlank),
		validation.Field(&r.OrganizationID, validation.When(r.OrganizationID != "", validation.Length(36, 36))),
	)
}

// UnlockPasswordRequest contains the password for an unlock attempt.
type UnlockPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Validate checks if the unlock request is valid.
func (r *UnlockPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, customValidation.NotBlank),
	)
}

// UnlockRecoveryRequest contains the recovery phrase for an unlock attempt.
type UnlockRecoveryRequest struct {
	Phrase string `json:"phrase" binding:"required"`
}

// Validate checks if the unlock request is valid.
func (r *UnlockRecoveryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Phrase,
			validation.Required,
			customValidation.RecoveryPhraseWordCount,
		),
	)
}

// UnlockOrgRequest identifies the organization whose master key should unlock
// the survey.
type UnlockOrgRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

// Validate checks if the unlock request is valid.
func (r *UnlockOrgRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrganizationID, validation.Required, validation.Length(36, 36)),
	)
}

// OIDCIdentityRequest carries an SSO identity assertion for unlock and
// auto-unlock checks.
type OIDCIdentityRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Provider string `json:"provider" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
}

// Validate checks if the identity is valid.
func (r *OIDCIdentityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, validation.Length(36, 36)),
		validation.Field(&r.Provider, validation.Required, oidcProviderRule),
		validation.Field(&r.Subject, validation.Required, customValidation.NotBlank),
	)
}

// VerifyLegacyKeyRequest carries a base64-encoded opaque key for verification
// against the deprecated digest record.
type VerifyLegacyKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// Validate checks if the verify request is valid.
func (r *VerifyLegacyKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.Required, customValidation.NotBlank),
	)
}

// EncryptDemographicsRequest carries a demographic dictionary to seal under
// the session's survey grant.
type EncryptDemographicsRequest struct {
	Demographics map[string]any `json:"demographics" binding:"required"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptDemographicsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Demographics, validation.Required),
	)
}

// DecryptDemographicsRequest carries a base64-encoded demographics blob.
type DecryptDemographicsRequest struct {
	Blob string `json:"blob" binding:"required"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptDemographicsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Blob, validation.Required, customValidation.NotBlank),
	)
}

// CreateOrganizationRequest contains the parameters for creating an
// organization with a fresh master key.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate checks if the create request is valid.
func (r *CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
	)
}
