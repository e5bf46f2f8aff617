package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/checktick/surveyvault/internal/metrics"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// encryptionUseCaseWithMetrics decorates EncryptionUseCase with metrics
// instrumentation. Unlock attempts additionally feed the unlock counter,
// which is the audit signal for key access.
type encryptionUseCaseWithMetrics struct {
	next    EncryptionUseCase
	metrics metrics.BusinessMetrics
}

// NewEncryptionUseCaseWithMetrics wraps an EncryptionUseCase with metrics recording.
func NewEncryptionUseCaseWithMetrics(useCase EncryptionUseCase, m metrics.BusinessMetrics) EncryptionUseCase {
	return &encryptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the generic operation count and duration.
func (e *encryptionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "surveys", operation, status)
	e.metrics.RecordDuration(ctx, "surveys", operation, time.Since(start), status)
}

// recordUnlock emits the unlock attempt counter alongside the generic metrics.
func (e *encryptionUseCaseWithMetrics) recordUnlock(ctx context.Context, method surveysDomain.UnlockMethod, start time.Time, err error) {
	outcome := "granted"
	if err != nil {
		outcome = "denied"
	}
	e.metrics.RecordUnlock(ctx, string(method), outcome)
	e.record(ctx, "unlock_"+string(method), start, err)
}

func (e *encryptionUseCaseWithMetrics) SetupDualEncryption(
	ctx context.Context,
	surveyID uuid.UUID,
	password string,
	orgID uuid.NullUUID,
) (*SetupResult, error) {
	start := time.Now()
	result, err := e.next.SetupDualEncryption(ctx, surveyID, password, orgID)
	e.record(ctx, "setup_dual", start, err)
	return result, err
}

func (e *encryptionUseCaseWithMetrics) SetupSSOEncryption(
	ctx context.Context,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
	orgID uuid.NullUUID,
	withRecovery bool,
) (*SetupResult, error) {
	start := time.Now()
	result, err := e.next.SetupSSOEncryption(ctx, surveyID, identity, orgID, withRecovery)
	e.record(ctx, "setup_sso", start, err)
	return result, err
}

func (e *encryptionUseCaseWithMetrics) UnlockWithPassword(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	password string,
) error {
	start := time.Now()
	err := e.next.UnlockWithPassword(ctx, sessionID, surveyID, password)
	e.recordUnlock(ctx, surveysDomain.UnlockPassword, start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) UnlockWithRecovery(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	phrase string,
) error {
	start := time.Now()
	err := e.next.UnlockWithRecovery(ctx, sessionID, surveyID, phrase)
	e.recordUnlock(ctx, surveysDomain.UnlockRecovery, start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) UnlockWithOrgKey(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	orgID uuid.UUID,
) error {
	start := time.Now()
	err := e.next.UnlockWithOrgKey(ctx, sessionID, surveyID, orgID)
	e.recordUnlock(ctx, surveysDomain.UnlockOrg, start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) UnlockWithOIDC(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
) error {
	start := time.Now()
	err := e.next.UnlockWithOIDC(ctx, sessionID, surveyID, identity)
	e.recordUnlock(ctx, surveysDomain.UnlockOIDC, start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error {
	start := time.Now()
	err := e.next.Lock(ctx, sessionID, surveyID)
	e.record(ctx, "lock", start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) LockAll(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := e.next.LockAll(ctx, sessionID)
	e.record(ctx, "lock_all", start, err)
	return err
}

func (e *encryptionUseCaseWithMetrics) Status(ctx context.Context, surveyID uuid.UUID) (*Status, error) {
	start := time.Now()
	status, err := e.next.Status(ctx, surveyID)
	e.record(ctx, "status", start, err)
	return status, err
}

func (e *encryptionUseCaseWithMetrics) CanUnlockAutomatically(
	ctx context.Context,
	surveyID uuid.UUID,
	identity surveysDomain.OIDCIdentity,
) (bool, error) {
	start := time.Now()
	ok, err := e.next.CanUnlockAutomatically(ctx, surveyID, identity)
	e.record(ctx, "can_unlock_automatically", start, err)
	return ok, err
}

func (e *encryptionUseCaseWithMetrics) VerifyLegacyKey(
	ctx context.Context,
	surveyID uuid.UUID,
	key []byte,
) (bool, error) {
	start := time.Now()
	ok, err := e.next.VerifyLegacyKey(ctx, surveyID, key)
	e.record(ctx, "verify_legacy_key", start, err)
	return ok, err
}

func (e *encryptionUseCaseWithMetrics) EncryptDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	demographics map[string]any,
) ([]byte, error) {
	start := time.Now()
	blob, err := e.next.EncryptDemographics(ctx, sessionID, surveyID, demographics)
	e.record(ctx, "demographics_encrypt", start, err)
	return blob, err
}

func (e *encryptionUseCaseWithMetrics) DecryptDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	blob []byte,
) (map[string]any, error) {
	start := time.Now()
	demographics, err := e.next.DecryptDemographics(ctx, sessionID, surveyID, blob)
	e.record(ctx, "demographics_decrypt", start, err)
	return demographics, err
}

func (e *encryptionUseCaseWithMetrics) FingerprintDemographics(
	ctx context.Context,
	sessionID string,
	surveyID uuid.UUID,
	demographics map[string]any,
) ([]byte, error) {
	start := time.Now()
	fingerprint, err := e.next.FingerprintDemographics(ctx, sessionID, surveyID, demographics)
	e.record(ctx, "demographics_fingerprint", start, err)
	return fingerprint, err
}
