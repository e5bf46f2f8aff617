package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/checktick/surveyvault/internal/auth/domain"
	authService "github.com/checktick/surveyvault/internal/auth/service"
	apperrors "github.com/checktick/surveyvault/internal/errors"
	"github.com/checktick/surveyvault/internal/database"
)

// clientUseCase implements ClientUseCase for managing client authentication.
type clientUseCase struct {
	txManager     database.TxManager
	clientRepo    ClientRepository
	secretService authService.SecretService
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	txManager database.TxManager,
	clientRepo ClientRepository,
	secretService authService.SecretService,
) ClientUseCase {
	return &clientUseCase{
		txManager:     txManager,
		clientRepo:    clientRepo,
		secretService: secretService,
	}
}

// Create generates and persists a new Client with a random secret.
// Returns the client ID and plain text secret. The plain secret is only
// returned once and must be securely stored by the caller. The hashed version
// is stored in the database.
func (c *clientUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	client := &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Secret:    hashedSecret,
		Name:      input.Name,
		IsActive:  input.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Get retrieves a client by ID.
// Returns ErrClientNotFound if the client doesn't exist.
func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

// Deactivate performs a soft delete on a client by setting IsActive to false.
func (c *clientUseCase) Deactivate(ctx context.Context, clientID uuid.UUID) error {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return err
	}

	client.IsActive = false

	return c.clientRepo.Update(ctx, client)
}

// Authenticate verifies a client ID and plain secret pair.
//
// An unknown client and a wrong secret both return ErrInvalidCredentials so
// the response does not reveal whether the client ID exists. The secret
// comparison runs before the active check, keeping the error for a
// deactivated client (ErrClientInactive) limited to callers who hold valid
// credentials.
func (c *clientUseCase) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) (*authDomain.Client, error) {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !c.secretService.CompareSecret(plainSecret, client.Secret) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if !client.IsActive {
		return nil, authDomain.ErrClientInactive
	}

	return client, nil
}
