package dto

import (
	"encoding/base64"
	"time"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
)

// SetupEncryptionResponse reports a completed encryption setup.
// SECURITY: RecoveryWords is shown exactly once and never persisted; callers
// must present it to the user immediately.
type SetupEncryptionResponse struct {
	SurveyID      string         `json:"survey_id"`
	RecoveryWords []string       `json:"recovery_words,omitempty"`
	RecoveryHint  string         `json:"recovery_hint,omitempty"`
	Status        StatusResponse `json:"status"`
}

// StatusResponse is the read-only view of a survey's encryption state.
type StatusResponse struct {
	SurveyID          string `json:"survey_id"`
	HasDualEncryption bool   `json:"has_dual_encryption"`
	HasOrgEncryption  bool   `json:"has_org_encryption"`
	HasOIDCEncryption bool   `json:"has_oidc_encryption"`
	HasAnyEncryption  bool   `json:"has_any_encryption"`
	HasLegacyKeyHash  bool   `json:"has_legacy_key_hash"`
	RecoveryHint      string `json:"recovery_hint,omitempty"`
}

// UnlockResponse acknowledges a granted unlock.
type UnlockResponse struct {
	SurveyID string `json:"survey_id"`
	Status   string `json:"status"`
}

// CanUnlockResponse reports whether an identity can unlock without a
// user-supplied secret.
type CanUnlockResponse struct {
	SurveyID  string `json:"survey_id"`
	CanUnlock bool   `json:"can_unlock"`
}

// VerifyLegacyKeyResponse reports the outcome of a legacy key check.
type VerifyLegacyKeyResponse struct {
	SurveyID string `json:"survey_id"`
	Valid    bool   `json:"valid"`
}

// EncryptedDemographicsResponse carries a sealed demographics blob,
// base64-encoded for transport.
type EncryptedDemographicsResponse struct {
	SurveyID string `json:"survey_id"`
	Blob     string `json:"blob"`
}

// DemographicsResponse carries a decrypted demographic dictionary.
type DemographicsResponse struct {
	SurveyID     string         `json:"survey_id"`
	Demographics map[string]any `json:"demographics"`
}

// FingerprintResponse carries the duplicate-detection fingerprint of a
// demographic dictionary.
type FingerprintResponse struct {
	SurveyID    string `json:"survey_id"`
	Fingerprint string `json:"fingerprint"`
}

// OrganizationResponse represents an organization in API responses.
// The master key is never included.
type OrganizationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HasMasterKey bool      `json:"has_master_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapStatusToResponse converts a usecase status view to an API response.
func MapStatusToResponse(status *surveysUseCase.Status) StatusResponse {
	return StatusResponse{
		SurveyID:          status.SurveyID.String(),
		HasDualEncryption: status.HasDualEncryption,
		HasOrgEncryption:  status.HasOrgEncryption,
		HasOIDCEncryption: status.HasOIDCEncryption,
		HasAnyEncryption:  status.HasAnyEncryption,
		HasLegacyKeyHash:  status.HasLegacyKeyHash,
		RecoveryHint:      status.RecoveryHint,
	}
}

// MapSetupResultToResponse converts a setup result to an API response.
func MapSetupResultToResponse(result *surveysUseCase.SetupResult) SetupEncryptionResponse {
	state := result.State
	return SetupEncryptionResponse{
		SurveyID:      state.SurveyID.String(),
		RecoveryWords: result.RecoveryWords,
		RecoveryHint:  result.RecoveryHint,
		Status: StatusResponse{
			SurveyID:          state.SurveyID.String(),
			HasDualEncryption: state.HasDualEncryption(),
			HasOrgEncryption:  state.HasOrgEncryption(),
			HasOIDCEncryption: state.HasOIDCEncryption(),
			HasAnyEncryption:  state.HasAnyEncryption(),
			HasLegacyKeyHash:  state.HasLegacyKeyHash(),
			RecoveryHint:      state.RecoveryHint,
		},
	}
}

// MapOrganizationToResponse converts a domain organization to an API response.
func MapOrganizationToResponse(org *surveysDomain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		HasMasterKey: org.HasMasterKey(),
		CreatedAt:    org.CreatedAt,
	}
}

// EncodeBlob encodes a ciphertext blob for JSON transport.
func EncodeBlob(blob []byte) string {
	return base64.StdEncoding.EncodeToString(blob)
}

// DecodeBlob decodes a base64 ciphertext blob from a request.
func DecodeBlob(blob string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(blob)
}
