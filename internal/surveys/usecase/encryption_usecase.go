package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	"github.com/checktick/surveyvault/internal/database"
	apperrors "github.com/checktick/surveyvault/internal/errors"
	"github.com/checktick/surveyvault/internal/recovery"
	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysService "github.com/checktick/surveyvault/internal/surveys/service"
)

// defaultRecoveryWordCount is the phrase length generated at setup.
const defaultRecoveryWordCount = 12

// encryptionUseCase implements EncryptionUseCase.
type encryptionUseCase struct {
	txManager  database.TxManager
	surveyRepo SurveyEncryptionRepository
	orgRepo    OrganizationRepository
	keyWrapper surveysService.KeyWrapper
	content    surveysService.ContentCipher
	sessions   SessionController
}

// NewEncryptionUseCase creates an encryption use case with the provided dependencies.
func NewEncryptionUseCase(
	txManager database.TxManager,
	surveyRepo SurveyEncryptionRepository,
	orgRepo OrganizationRepository,
	keyWrapper surveysService.KeyWrapper,
	content surveysService.ContentCipher,
	sessions SessionController,
) EncryptionUseCase {
	return &encryptionUseCase{
		txManager:  txManager,
		surveyRepo: surveyRepo,
		orgRepo:    orgRepo,
		keyWrapper: keyWrapper,
		content:    content,
		sessions:   sessions,
	}
}

// SetupDualEncryption installs password+recovery wraps for a survey with no
// existing encryption, plus the org wrap when the organization holds a
// master key.
func (u *encryptionUseCase) SetupDualEncryption(
	ctx context.Context,
	surveyID uuid.UUID,
	password string,
	orgID uuid.NullUUID,
) (*SetupResult, error) {
	existing, err := u.loadForSetup(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	kek, err := u.keyWrapper.GenerateKek()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	words, err := recovery.GeneratePhrase(defaultRecoveryWordCount)
	if err != nil {
		return nil, err
	}

	state := u.setupState(existing, surveyID)

	if err := u.keyWrapper.SetDualEncryption(state, kek, password, words); err != nil {
		return nil, err
	}

	if err := u.installOrgWrapIfAvailable(ctx, state, kek, orgID); err != nil {
		return nil, err
	}

	if err := u.persist(ctx, state, existing != nil); err != nil {
		return nil, err
	}

	return &SetupResult{
		State:         state,
		RecoveryWords: words,
		RecoveryHint:  state.RecoveryHint,
	}, nil
}

// SetupSSOEncryption installs the OIDC wrap for a survey with no existing
// encryption, plus the org wrap when available and a recovery wrap when the
// user opted in.
func (u *encryptionUseCase) SetupSSOEncryption(
	ctx context.Context,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
	orgID uuid.NullUUID,
	withRecovery bool,
) (*SetupResult, error) {
	existing, err := u.loadForSetup(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	kek, err := u.keyWrapper.GenerateKek()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	state := u.setupState(existing, surveyID)

	if err := u.keyWrapper.SetOIDCEncryption(state, kek, identity); err != nil {
		return nil, err
	}

	if err := u.installOrgWrapIfAvailable(ctx, state, kek, orgID); err != nil {
		return nil, err
	}

	var words []string
	if withRecovery {
		words, err = recovery.GeneratePhrase(defaultRecoveryWordCount)
		if err != nil {
			return nil, err
		}
		if err := u.keyWrapper.SetRecoveryEncryption(state, kek, words); err != nil {
			return nil, err
		}
	}

	if err := u.persist(ctx, state, existing != nil); err != nil {
		return nil, err
	}

	return &SetupResult{
		State:         state,
		RecoveryWords: words,
		RecoveryHint:  state.RecoveryHint,
	}, nil
}

// UnlockWithPassword verifies the password and grants the session access.
func (u *encryptionUseCase) UnlockWithPassword(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	password string,
) error {
	return u.grant(ctx, sessionID, surveyID, sessionDomain.Grant{
		SurveyID:   surveyID,
		Method:     surveysDomain.UnlockPassword,
		Passphrase: password,
	})
}

// UnlockWithRecovery verifies the recovery phrase and grants the session access.
func (u *encryptionUseCase) UnlockWithRecovery(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	phrase string,
) error {
	return u.grant(ctx, sessionID, surveyID, sessionDomain.Grant{
		SurveyID:   surveyID,
		Method:     surveysDomain.UnlockRecovery,
		Passphrase: phrase,
	})
}

// UnlockWithOrgKey verifies the organization's master key and grants the
// session access.
func (u *encryptionUseCase) UnlockWithOrgKey(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	orgID uuid.UUID,
) error {
	return u.grant(ctx, sessionID, surveyID, sessionDomain.Grant{
		SurveyID: surveyID,
		Method:   surveysDomain.UnlockOrg,
		OrgID:    uuid.NullUUID{UUID: orgID, Valid: true},
	})
}

// UnlockWithOIDC verifies the OIDC identity and grants the session access.
func (u *encryptionUseCase) UnlockWithOIDC(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
) error {
	return u.grant(ctx, sessionID, surveyID, sessionDomain.Grant{
		SurveyID: surveyID,
		Method:   surveysDomain.UnlockOIDC,
		Identity: identity,
	})
}

// Lock discards the session's grant for one survey.
func (u *encryptionUseCase) Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error {
	return u.sessions.Lock(ctx, sessionID, surveyID)
}

// LockAll discards every grant held by the session.
func (u *encryptionUseCase) LockAll(ctx context.Context, sessionID string) error {
	return u.sessions.LockAll(ctx, sessionID)
}

// Status returns the wrap-state predicates and recovery hint.
func (u *encryptionUseCase) Status(ctx context.Context, surveyID uuid.UUID) (*Status, error) {
	state, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return &Status{
		SurveyID:          state.SurveyID,
		HasDualEncryption: state.HasDualEncryption(),
		HasOrgEncryption:  state.HasOrgEncryption(),
		HasOIDCEncryption: state.HasOIDCEncryption(),
		HasAnyEncryption:  state.HasAnyEncryption(),
		HasLegacyKeyHash:  state.HasLegacyKeyHash(),
		RecoveryHint:      state.RecoveryHint,
	}, nil
}

// CanUnlockAutomatically reports whether the identity can unlock the survey
// without a user-supplied secret.
func (u *encryptionUseCase) CanUnlockAutomatically(
	ctx context.Context,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
) (bool, error) {
	state, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return false, err
	}
	return u.keyWrapper.CanUnlockAutomatically(state, identity), nil
}

// VerifyLegacyKey checks a submitted opaque key against the deprecated
// verification-only record.
func (u *encryptionUseCase) VerifyLegacyKey(
	ctx context.Context,
	surveyID uuid.UUID,
	key []byte,
) (bool, error) {
	state, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return false, err
	}
	return u.keyWrapper.VerifyLegacyKey(state, key), nil
}

// EncryptDemographics seals a demographic dictionary using the session's
// grant for the survey.
func (u *encryptionUseCase) EncryptDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	demographics map[string]any,
) ([]byte, error) {
	kek, err := u.sessionKek(ctx, sessionID, surveyID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	return u.content.EncryptDemographics(kek, demographics)
}

// DecryptDemographics opens a demographics blob using the session's grant.
func (u *encryptionUseCase) DecryptDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	blob []byte,
) (map[string]any, error) {
	kek, err := u.sessionKek(ctx, sessionID, surveyID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	return u.content.DecryptDemographics(kek, blob)
}

// FingerprintDemographics returns the duplicate-detection fingerprint keyed
// by the session's KEK for the survey.
func (u *encryptionUseCase) FingerprintDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	demographics map[string]any,
) ([]byte, error) {
	kek, err := u.sessionKek(ctx, sessionID, surveyID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	return u.content.Fingerprint(kek, demographics)
}

// grant loads the wrap state and asks the session controller to verify the
// credential and record the grant.
func (u *encryptionUseCase) grant(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	grant sessionDomain.Grant,
) error {
	state, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return err
	}

	kek, err := u.sessions.Grant(ctx, sessionID, grant, state)
	if err != nil {
		return err
	}
	cryptoDomain.Zero(kek)
	return nil
}

// sessionKek re-derives the survey KEK from the session's stored grant.
func (u *encryptionUseCase) sessionKek(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
) ([]byte, error) {
	state, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return u.sessions.SurveyKey(ctx, sessionID, state)
}

// loadForSetup returns the existing wrap state for the survey, or nil when
// none exists. A state with any wrap installed rejects a second KEK
// generation event; a legacy-hash-only row is fair game for setup.
func (u *encryptionUseCase) loadForSetup(ctx context.Context, surveyID uuid.UUID) (*surveysDomain.SurveyEncryption, error) {
	existing, err := u.surveyRepo.Get(ctx, surveyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.HasAnyEncryption() {
		return nil, surveysDomain.ErrAlreadyEncrypted
	}
	return existing, nil
}

// installOrgWrapIfAvailable adds the org wrap when the organization exists
// and holds a master key. Organizations without a master key are skipped
// silently: escrow is an org-level opt-in, not a setup error.
func (u *encryptionUseCase) installOrgWrapIfAvailable(
	ctx context.Context,
	state *surveysDomain.SurveyEncryption,
	kek []byte,
	orgID uuid.NullUUID,
) error {
	if !orgID.Valid {
		return nil
	}

	org, err := u.orgRepo.Get(ctx, orgID.UUID)
	if err != nil {
		return err
	}
	if !org.HasMasterKey() {
		state.OrganizationID = orgID
		return nil
	}
	return u.keyWrapper.SetOrgEncryption(state, kek, org)
}

// setupState returns the state to build wraps into: the existing
// legacy-era row when one exists, otherwise a fresh one.
func (u *encryptionUseCase) setupState(existing *surveysDomain.SurveyEncryption, surveyID uuid.UUID) *surveysDomain.SurveyEncryption {
	now := time.Now().UTC()
	if existing != nil {
		existing.UpdatedAt = now
		return existing
	}
	return &surveysDomain.SurveyEncryption{
		SurveyID:  surveyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// persist stores the wrap state within a transaction.
func (u *encryptionUseCase) persist(ctx context.Context, state *surveysDomain.SurveyEncryption, update bool) error {
	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if update {
			return u.surveyRepo.Update(txCtx, state)
		}
		return u.surveyRepo.Create(txCtx, state)
	})
}
