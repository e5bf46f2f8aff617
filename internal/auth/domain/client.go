// Package domain defines the API client model used to authenticate
// server-to-server callers of the survey encryption API.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents an API client credential. Clients authenticate requests
// with their ID and plain secret; only the Argon2id hash of the secret is
// stored.
type Client struct {
	ID        uuid.UUID // Unique identifier (UUIDv7)
	Secret    string    //nolint:gosec // hashed client secret (not plaintext)
	Name      string    // Human-readable client name
	IsActive  bool      // Whether the client can authenticate
	CreatedAt time.Time
}

// CreateClientInput contains the parameters for creating a new API client.
// The client secret is generated server-side and cannot be chosen.
type CreateClientInput struct {
	Name     string // Human-readable name for identifying the client
	IsActive bool   // Whether the client can authenticate immediately after creation
}

// CreateClientOutput contains the result of creating a new client.
// SECURITY: The PlainSecret is only returned once and must be securely
// transmitted to the client. It is never retrievable again.
type CreateClientOutput struct {
	ID          uuid.UUID // Unique identifier for the created client (UUIDv7)
	PlainSecret string    // Plain text secret for authentication (transmit securely, never log)
}
