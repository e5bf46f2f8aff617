package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	"github.com/checktick/surveyvault/internal/database"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// organizationUseCase implements OrganizationUseCase.
type organizationUseCase struct {
	txManager database.TxManager
	orgRepo   OrganizationRepository
}

// NewOrganizationUseCase creates an organization use case.
func NewOrganizationUseCase(txManager database.TxManager, orgRepo OrganizationRepository) OrganizationUseCase {
	return &organizationUseCase{
		txManager: txManager,
		orgRepo:   orgRepo,
	}
}

// Create stores an organization with a fresh random 32-byte master key.
func (u *organizationUseCase) Create(ctx context.Context, name string) (*surveysDomain.Organization, error) {
	masterKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}

	org := &surveysDomain.Organization{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		MasterKey: masterKey,
		CreatedAt: time.Now().UTC(),
	}

	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return u.orgRepo.Create(txCtx, org)
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

// Get returns an organization by ID.
func (u *organizationUseCase) Get(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error) {
	return u.orgRepo.Get(ctx, id)
}
