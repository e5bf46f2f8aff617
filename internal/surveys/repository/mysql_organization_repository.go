package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/checktick/surveyvault/internal/database"
	apperrors "github.com/checktick/surveyvault/internal/errors"
	"github.com/checktick/surveyvault/internal/kms"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// MySQLOrganizationRepository implements organization persistence for MySQL
// with KMS-sealed master keys.
type MySQLOrganizationRepository struct {
	db     *sql.DB
	keeper kms.Keeper
}

// NewMySQLOrganizationRepository creates a MySQL organization repository.
func NewMySQLOrganizationRepository(db *sql.DB, keeper kms.Keeper) *MySQLOrganizationRepository {
	return &MySQLOrganizationRepository{db: db, keeper: keeper}
}

// Create inserts an organization, sealing its master key.
func (m *MySQLOrganizationRepository) Create(ctx context.Context, org *surveysDomain.Organization) error {
	querier := database.GetTx(ctx, m.db)

	sealed, err := sealMasterKey(ctx, m.keeper, org.MasterKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO organizations (id, name, master_key, created_at)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, org.ID, org.Name, sealed, org.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create organization")
	}
	return nil
}

// Get retrieves an organization, unsealing its master key.
func (m *MySQLOrganizationRepository) Get(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, master_key, created_at
			  FROM organizations
			  WHERE id = ?`

	var org surveysDomain.Organization
	var sealed []byte
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&sealed,
		&org.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, surveysDomain.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get organization")
	}

	org.MasterKey, err = openMasterKey(ctx, m.keeper, sealed)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
