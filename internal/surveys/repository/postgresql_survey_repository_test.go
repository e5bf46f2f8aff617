package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

func surveyColumns() []string {
	return []string{
		"survey_id", "organization_id", "wrapped_password", "wrapped_recovery", "wrapped_org",
		"wrapped_oidc", "recovery_hint", "legacy_key_hash", "legacy_key_salt", "created_at", "updated_at",
	}
}

func TestPostgreSQLSurveyEncryptionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLSurveyEncryptionRepository(db)
	now := time.Now().UTC()
	state := &surveysDomain.SurveyEncryption{
		SurveyID:        uuid.New(),
		WrappedPassword: []byte("wrap-pw"),
		WrappedRecovery: []byte("wrap-rec"),
		RecoveryHint:    "apple...falcon",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO survey_encryption")).
		WithArgs(
			state.SurveyID, state.OrganizationID, state.WrappedPassword, state.WrappedRecovery,
			[]byte(nil), []byte(nil), state.RecoveryHint, []byte(nil), []byte(nil),
			state.CreatedAt, state.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), state))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSurveyEncryptionRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLSurveyEncryptionRepository(db)
		surveyID := uuid.New()
		orgID := uuid.New()
		now := time.Now().UTC()

		rows := sqlmock.NewRows(surveyColumns()).AddRow(
			surveyID.String(), orgID.String(), []byte("wrap-pw"), []byte("wrap-rec"),
			[]byte("wrap-org"), nil, "apple...falcon", nil, nil, now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT survey_id, organization_id")).
			WithArgs(surveyID).
			WillReturnRows(rows)

		state, err := repo.Get(context.Background(), surveyID)
		require.NoError(t, err)
		assert.Equal(t, surveyID, state.SurveyID)
		assert.True(t, state.OrganizationID.Valid)
		assert.Equal(t, orgID, state.OrganizationID.UUID)
		assert.True(t, state.HasDualEncryption())
		assert.True(t, state.HasOrgEncryption())
		assert.False(t, state.HasOIDCEncryption())
		assert.Equal(t, "apple...falcon", state.RecoveryHint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLSurveyEncryptionRepository(db)
		surveyID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT survey_id, organization_id")).
			WithArgs(surveyID).
			WillReturnRows(sqlmock.NewRows(surveyColumns()))

		_, err = repo.Get(context.Background(), surveyID)
		assert.ErrorIs(t, err, surveysDomain.ErrSurveyNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLSurveyEncryptionRepository_Update(t *testing.T) {
	t.Run("updates the wrap columns", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLSurveyEncryptionRepository(db)
		state := &surveysDomain.SurveyEncryption{
			SurveyID:        uuid.New(),
			WrappedPassword: []byte("wrap-pw"),
			WrappedRecovery: []byte("wrap-rec"),
			RecoveryHint:    "apple...falcon",
		}

		mock.ExpectExec(regexp.QuoteMeta("UPDATE survey_encryption")).
			WithArgs(
				state.OrganizationID, state.WrappedPassword, state.WrappedRecovery,
				[]byte(nil), []byte(nil), state.RecoveryHint, []byte(nil), []byte(nil),
				sqlmock.AnyArg(), state.SurveyID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), state))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLSurveyEncryptionRepository(db)
		state := &surveysDomain.SurveyEncryption{SurveyID: uuid.New()}

		mock.ExpectExec(regexp.QuoteMeta("UPDATE survey_encryption")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Update(context.Background(), state)
		assert.ErrorIs(t, err, surveysDomain.ErrSurveyNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
