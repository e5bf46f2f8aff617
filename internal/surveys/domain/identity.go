package domain

import (
	"github.com/google/uuid"
)

// OIDCProvider enumerates the supported SSO providers. Provider-specific
// endpoint configuration is resolved per request from this enum into an
// immutable value; no shared mutable provider state exists.
type OIDCProvider string

const (
	ProviderGoogle OIDCProvider = "google"
	ProviderAzure  OIDCProvider = "azure"
)

// OIDCIdentity is a user's stable SSO binding: the (provider, subject) pair
// asserted by the identity provider at login. It is the input to the
// server-side wrapping secret derivation; the subject is never stored in or
// recoverable from a wrap blob.
type OIDCIdentity struct {
	UserID   uuid.UUID
	Provider OIDCProvider
	Subject  string
}

// IsZero reports whether the identity carries no binding.
func (i OIDCIdentity) IsZero() bool {
	return i.Provider == "" && i.Subject == ""
}
