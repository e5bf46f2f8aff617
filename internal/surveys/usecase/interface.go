// Package usecase orchestrates the survey encryption flows: setup of wrap
// paths per the account policy, session-mediated unlock and lock, and
// demographics encryption under a session-held grant.
package usecase

import (
	"context"

	"github.com/google/uuid"

	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// SurveyEncryptionRepository persists per-survey wrap state.
type SurveyEncryptionRepository interface {
	Create(ctx context.Context, state *surveysDomain.SurveyEncryption) error
	Get(ctx context.Context, surveyID uuid.UUID) (*surveysDomain.SurveyEncryption, error)
	Update(ctx context.Context, state *surveysDomain.SurveyEncryption) error
}

// OrganizationRepository persists organizations and their master keys.
type OrganizationRepository interface {
	Create(ctx context.Context, org *surveysDomain.Organization) error
	Get(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error)
}

// SessionController mediates KEK access through session-scoped grants.
type SessionController interface {
	Grant(ctx context.Context, sessionID string, grant sessionDomain.Grant, state *surveysDomain.SurveyEncryption) ([]byte, error)
	SurveyKey(ctx context.Context, sessionID string, state *surveysDomain.SurveyEncryption) ([]byte, error)
	Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error
	LockAll(ctx context.Context, sessionID string) error
}

// SetupResult reports a completed encryption setup. RecoveryWords is non-nil
// exactly when a recovery wrap was installed; it is shown to the user once
// and never persisted.
type SetupResult struct {
	State         *surveysDomain.SurveyEncryption
	RecoveryWords []string
	RecoveryHint  string
}

// Status is the read-only view of a survey's encryption state.
type Status struct {
	SurveyID          uuid.UUID
	HasDualEncryption bool
	HasOrgEncryption  bool
	HasOIDCEncryption bool
	HasAnyEncryption  bool
	HasLegacyKeyHash  bool
	RecoveryHint      string
}

// EncryptionUseCase is the application surface of the survey encryption
// subsystem.
type EncryptionUseCase interface {
	// SetupDualEncryption installs password+recovery wraps (plus the org wrap
	// when the owning organization has a master key) for a survey with no
	// existing encryption. Returns the generated recovery words.
	SetupDualEncryption(ctx context.Context, surveyID uuid.UUID, password string, orgID uuid.NullUUID) (*SetupResult, error)

	// SetupSSOEncryption installs the OIDC wrap for a survey with no existing
	// encryption, plus the org wrap when the owning organization has a master
	// key, plus a recovery wrap when the user opted in.
	SetupSSOEncryption(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity, orgID uuid.NullUUID, withRecovery bool) (*SetupResult, error)

	// UnlockWithPassword verifies the password and grants the session access.
	UnlockWithPassword(ctx context.Context, sessionID string, surveyID uuid.UUID, password string) error

	// UnlockWithRecovery verifies the recovery phrase and grants the session access.
	UnlockWithRecovery(ctx context.Context, sessionID string, surveyID uuid.UUID, phrase string) error

	// UnlockWithOrgKey verifies the organization's master key and grants the
	// session access.
	UnlockWithOrgKey(ctx context.Context, sessionID string, surveyID uuid.UUID, orgID uuid.UUID) error

	// UnlockWithOIDC verifies the OIDC identity and grants the session access.
	UnlockWithOIDC(ctx context.Context, sessionID string, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) error

	// Lock discards the session's grant for one survey.
	Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error

	// LockAll discards every grant held by the session.
	LockAll(ctx context.Context, sessionID string) error

	// Status returns the wrap-state predicates and recovery hint.
	Status(ctx context.Context, surveyID uuid.UUID) (*Status, error)

	// CanUnlockAutomatically reports whether the identity can unlock the
	// survey without a user-supplied secret.
	CanUnlockAutomatically(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) (bool, error)

	// VerifyLegacyKey checks a submitted opaque key against the deprecated
	// verification-only record.
	VerifyLegacyKey(ctx context.Context, surveyID uuid.UUID, key []byte) (bool, error)

	// EncryptDemographics seals a demographic dictionary using the session's
	// grant for the survey.
	EncryptDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error)

	// DecryptDemographics opens a demographics blob using the session's grant.
	DecryptDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, blob []byte) (map[string]any, error)

	// FingerprintDemographics returns the duplicate-detection fingerprint of a
	// demographic dictionary, keyed by the session's KEK for the survey.
	FingerprintDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error)
}

// OrganizationUseCase manages organizations and their master keys.
type OrganizationUseCase interface {
	// Create stores an organization with a fresh random 32-byte master key.
	Create(ctx context.Context, name string) (*surveysDomain.Organization, error)

	// Get returns an organization by ID.
	Get(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error)
}
