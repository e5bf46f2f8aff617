package service

import (
	"crypto/hmac"
	"crypto/sha256"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// oidcSecretLabel versions the wrapping-secret derivation. Changing it
// orphans every existing OIDC wrap blob, so a bump must ship with a re-wrap
// migration.
const oidcSecretLabel = "oidc-wrap:v1"

// OIDCSecretService derives the stable OIDC wrapping secret as
// HMAC-SHA256(pepper, label|provider|subject). The pepper is a 32-byte
// server-side secret held outside the database, so wrap blobs alone reveal
// neither the subject identifier nor the wrapping key.
type OIDCSecretService struct {
	pepper []byte
}

// NewOIDCSecretService creates an OIDCSecretService with the given pepper.
func NewOIDCSecretService(pepper []byte) *OIDCSecretService {
	return &OIDCSecretService{pepper: pepper}
}

// WrapSecret returns the 32-byte wrapping secret for an identity.
func (s *OIDCSecretService) WrapSecret(identity surveysDomain.OIDCIdentity) []byte {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(oidcSecretLabel))
	mac.Write([]byte{'|'})
	mac.Write([]byte(identity.Provider))
	mac.Write([]byte{'|'})
	mac.Write([]byte(identity.Subject))
	return mac.Sum(nil)
}
