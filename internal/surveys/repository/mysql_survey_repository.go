package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/checktick/surveyvault/internal/database"
	apperrors "github.com/checktick/surveyvault/internal/errors"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// MySQLSurveyEncryptionRepository implements wrap-state persistence for MySQL.
type MySQLSurveyEncryptionRepository struct {
	db *sql.DB
}

// NewMySQLSurveyEncryptionRepository creates a MySQL wrap-state repository.
func NewMySQLSurveyEncryptionRepository(db *sql.DB) *MySQLSurveyEncryptionRepository {
	return &MySQLSurveyEncryptionRepository{db: db}
}

// Create inserts a new wrap state row.
func (m *MySQLSurveyEncryptionRepository) Create(ctx context.Context, state *surveysDomain.SurveyEncryption) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO survey_encryption
			  (survey_id, organization_id, wrapped_password, wrapped_recovery, wrapped_org, wrapped_oidc,
			   recovery_hint, legacy_key_hash, legacy_key_salt, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		state.SurveyID,
		state.OrganizationID,
		state.WrappedPassword,
		state.WrappedRecovery,
		state.WrappedOrg,
		state.WrappedOIDC,
		state.RecoveryHint,
		state.LegacyKeyHash,
		state.LegacyKeySalt,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create survey encryption state")
	}
	return nil
}

// Get retrieves the wrap state for a survey.
func (m *MySQLSurveyEncryptionRepository) Get(
	ctx context.Context,
	surveyID uuid.UUID,
) (*surveysDomain.SurveyEncryption, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT survey_id, organization_id, wrapped_password, wrapped_recovery, wrapped_org, wrapped_oidc,
			  recovery_hint, legacy_key_hash, legacy_key_salt, created_at, updated_at
			  FROM survey_encryption
			  WHERE survey_id = ?`

	var state surveysDomain.SurveyEncryption
	err := querier.QueryRowContext(ctx, query, surveyID).Scan(
		&state.SurveyID,
		&state.OrganizationID,
		&state.WrappedPassword,
		&state.WrappedRecovery,
		&state.WrappedOrg,
		&state.WrappedOIDC,
		&state.RecoveryHint,
		&state.LegacyKeyHash,
		&state.LegacyKeySalt,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, surveysDomain.ErrSurveyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get survey encryption state")
	}

	return &state, nil
}

// Update replaces the wrap columns of an existing row.
func (m *MySQLSurveyEncryptionRepository) Update(ctx context.Context, state *surveysDomain.SurveyEncryption) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE survey_encryption
			  SET organization_id = ?, wrapped_password = ?, wrapped_recovery = ?, wrapped_org = ?,
			  wrapped_oidc = ?, recovery_hint = ?, legacy_key_hash = ?, legacy_key_salt = ?, updated_at = ?
			  WHERE survey_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		state.OrganizationID,
		state.WrappedPassword,
		state.WrappedRecovery,
		state.WrappedOrg,
		state.WrappedOIDC,
		state.RecoveryHint,
		state.LegacyKeyHash,
		state.LegacyKeySalt,
		time.Now().UTC(),
		state.SurveyID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update survey encryption state")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update survey encryption state")
	}
	if affected == 0 {
		return surveysDomain.ErrSurveyNotFound
	}
	return nil
}
