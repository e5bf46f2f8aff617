// Package repository implements persistence for survey wrap state and
// organizations. Repositories support both PostgreSQL and MySQL; organization
// master keys rest sealed under the KMS keeper and are unsealed on load.
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

// PostgreSQLSurveyEncryptionRepository implements wrap-state persistence for PostgreSQL.
type PostgreSQLSurveyEncryptionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSurveyEncryptionRepository creates a PostgreSQL wrap-state repository.
func NewPostgreSQLSurveyEncryptionRepository(db *sql.DB) *PostgreSQLSurveyEncryptionRepository {
	return &PostgreSQLSurveyEncryptionRepository{db: db}
}

// Create inserts a new wrap state row.
func (p *PostgreSQLSurveyEncryptionRepository) Create(ctx context.Context, state *surveysDomain.SurveyEncryption) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO survey_encryption
			  (survey_id, organization_id, wrapped_password, wrapped_recovery, wrapped_org, wrapped_oidc,
			   recovery_hint, legacy_key_hash, legacy_key_salt, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

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
func (p *PostgreSQLSurveyEncryptionRepository) Get(
	ctx context.Context,
	surveyID uuid.UUID,
) (*surveysDomain.SurveyEncryption, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT survey_id, organization_id, wrapped_password, wrapped_recovery, wrapped_org, wrapped_oidc,
			  recovery_hint, legacy_key_hash, legacy_key_salt, created_at, updated_at
			  FROM survey_encryption
			  WHERE survey_id = $1`

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

// Update replaces the wrap columns of an existing row. Wrap blobs are only
// ever replaced whole.
func (p *PostgreSQLSurveyEncryptionRepository) Update(ctx context.Context, state *surveysDomain.SurveyEncryption) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE survey_encryption
			  SET organization_id = $1, wrapped_password = $2, wrapped_recovery = $3, wrapped_org = $4,
			  wrapped_oidc = $5, recovery_hint = $6, legacy_key_hash = $7, legacy_key_salt = $8, updated_at = $9
			  WHERE survey_id = $10`

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
