package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// recordingMetrics captures metric calls for assertions.
type recordingMetrics struct {
	operations []string
	statuses   []string
	unlocks    []string
	outcomes   []string
}

func (r *recordingMetrics) RecordOperation(_ context.Context, _, operation, status string) {
	r.operations = append(r.operations, operation)
	r.statuses = append(r.statuses, status)
}

func (r *recordingMetrics) RecordDuration(_ context.Context, _, _ string, _ time.Duration, _ string) {
}

func (r *recordingMetrics) RecordUnlock(_ context.Context, method, outcome string) {
	r.unlocks = append(r.unlocks, method)
	r.outcomes = append(r.outcomes, outcome)
}

// stubUseCase returns canned results.
type stubUseCase struct {
	err error
}

func (s *stubUseCase) SetupDualEncryption(context.Context, uuid.UUID, string, uuid.NullUUID) (*SetupResult, error) {
	return &SetupResult{}, s.err
}

func (s *stubUseCase) SetupSSOEncryption(context.Context, uuid.UUID, surveysDomain.OIDCIdentity, uuid.NullUUID, bool) (*SetupResult, error) {
	return &SetupResult{}, s.err
}

func (s *stubUseCase) UnlockWithPassword(context.Context, string, uuid.UUID, string) error {
	return s.err
}

func (s *stubUseCase) UnlockWithRecovery(context.Context, string, uuid.UUID, string) error {
	return s.err
}

func (s *stubUseCase) UnlockWithOrgKey(context.Context, string, uuid.UUID, uuid.UUID) error {
	return s.err
}

func (s *stubUseCase) UnlockWithOIDC(context.Context, string, uuid.UUID, surveysDomain.OIDCIdentity) error {
	return s.err
}

func (s *stubUseCase) Lock(context.Context, string, uuid.UUID) error { return s.err }

func (s *stubUseCase) LockAll(context.Context, string) error { return s.err }

func (s *stubUseCase) Status(context.Context, uuid.UUID) (*Status, error) {
	return &Status{}, s.err
}

func (s *stubUseCase) CanUnlockAutomatically(context.Context, uuid.UUID, surveysDomain.OIDCIdentity) (bool, error) {
	return false, s.err
}

func (s *stubUseCase) VerifyLegacyKey(context.Context, uuid.UUID, []byte) (bool, error) {
	return false, s.err
}

func (s *stubUseCase) EncryptDemographics(context.Context, string, uuid.UUID, map[string]any) ([]byte, error) {
	return nil, s.err
}

func (s *stubUseCase) DecryptDemographics(context.Context, string, uuid.UUID, []byte) (map[string]any, error) {
	return nil, s.err
}

func (s *stubUseCase) FingerprintDemographics(context.Context, string, uuid.UUID, map[string]any) ([]byte, error) {
	return nil, s.err
}

func TestEncryptionUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("successful unlock records granted", func(t *testing.T) {
		m := &recordingMetrics{}
		decorated := NewEncryptionUseCaseWithMetrics(&stubUseCase{}, m)

		require.NoError(t, decorated.UnlockWithPassword(ctx, "sess-1", uuid.New(), "pw"))

		require.Len(t, m.unlocks, 1)
		assert.Equal(t, "password", m.unlocks[0])
		assert.Equal(t, "granted", m.outcomes[0])
		assert.Equal(t, []string{"unlock_password"}, m.operations)
		assert.Equal(t, []string{"success"}, m.statuses)
	})

	t.Run("failed unlock records denied", func(t *testing.T) {
		m := &recordingMetrics{}
		decorated := NewEncryptionUseCaseWithMetrics(&stubUseCase{err: sessionDomain.ErrSurveyLocked}, m)

		err := decorated.UnlockWithOIDC(ctx, "sess-1", uuid.New(), surveysDomain.OIDCIdentity{})
		assert.ErrorIs(t, err, sessionDomain.ErrSurveyLocked)

		require.Len(t, m.unlocks, 1)
		assert.Equal(t, "oidc", m.unlocks[0])
		assert.Equal(t, "denied", m.outcomes[0])
		assert.Equal(t, []string{"error"}, m.statuses)
	})

	t.Run("setup records the operation", func(t *testing.T) {
		m := &recordingMetrics{}
		decorated := NewEncryptionUseCaseWithMetrics(&stubUseCase{}, m)

		_, err := decorated.SetupDualEncryption(ctx, uuid.New(), "pw", uuid.NullUUID{})
		require.NoError(t, err)

		assert.Equal(t, []string{"setup_dual"}, m.operations)
		assert.Empty(t, m.unlocks)
	})

	t.Run("demographics operations are counted", func(t *testing.T) {
		m := &recordingMetrics{}
		decorated := NewEncryptionUseCaseWithMetrics(&stubUseCase{}, m)

		_, err := decorated.EncryptDemographics(ctx, "sess-1", uuid.New(), nil)
		require.NoError(t, err)
		_, err = decorated.DecryptDemographics(ctx, "sess-1", uuid.New(), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"demographics_encrypt", "demographics_decrypt"}, m.operations)
	})
}
