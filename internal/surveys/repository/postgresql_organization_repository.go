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

// PostgreSQLOrganizationRepository implements organization persistence for
// PostgreSQL. Master keys are sealed under the KMS keeper before they touch
// the database and unsealed on load; the plaintext master key never rests in
// a column.
type PostgreSQLOrganizationRepository struct {
	db     *sql.DB
	keeper kms.Keeper
}

// NewPostgreSQLOrganizationRepository creates a PostgreSQL organization repository.
func NewPostgreSQLOrganizationRepository(db *sql.DB, keeper kms.Keeper) *PostgreSQLOrganizationRepository {
	return &PostgreSQLOrganizationRepository{db: db, keeper: keeper}
}

// Create inserts an organization, sealing its master key.
func (p *PostgreSQLOrganizationRepository) Create(ctx context.Context, org *surveysDomain.Organization) error {
	querier := database.GetTx(ctx, p.db)

	sealed, err := sealMasterKey(ctx, p.keeper, org.MasterKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO organizations (id, name, master_key, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err = querier.ExecContext(ctx, query, org.ID, org.Name, sealed, org.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create organization")
	}
	return nil
}

// Get retrieves an organization, unsealing its master key.
func (p *PostgreSQLOrganizationRepository) Get(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, master_key, created_at
			  FROM organizations
			  WHERE id = $1`

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

	org.MasterKey, err = openMasterKey(ctx, p.keeper, sealed)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// sealMasterKey seals a master key under the keeper. Nil keys (orgs without
// escrow) pass through as nil.
func sealMasterKey(ctx context.Context, keeper kms.Keeper, masterKey []byte) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, nil
	}
	sealed, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal master key")
	}
	return sealed, nil
}

// openMasterKey unseals a stored master key. Nil columns pass through as nil.
func openMasterKey(ctx context.Context, keeper kms.Keeper, sealed []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	masterKey, err := keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unseal master key")
	}
	return masterKey, nil
}
