// Package usecase implements business logic orchestration for API client
// authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/checktick/surveyvault/internal/auth/domain"
)

// ClientRepository defines persistence operations for API clients.
type ClientRepository interface {
	Create(ctx context.Context, client *authDomain.Client) error
	Update(ctx context.Context, client *authDomain.Client) error
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)
}

// ClientUseCase defines operations for managing and authenticating API clients.
type ClientUseCase interface {
	// Create generates and persists a new client with a random secret.
	// The plain secret is only returned once.
	Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)

	// Get retrieves a client by ID.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)

	// Deactivate prevents a client from authenticating while preserving its
	// record.
	Deactivate(ctx context.Context, clientID uuid.UUID) error

	// Authenticate verifies a client ID and plain secret pair. Returns
	// ErrInvalidCredentials when the client is unknown or the secret does not
	// match, and ErrClientInactive when the client has been deactivated.
	Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) (*authDomain.Client, error)
}
