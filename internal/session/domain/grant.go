// Package domain defines the session-scoped unlock grant: the record that a
// user proved knowledge of an unlock credential for one survey within one
// session.
package domain

import (
	"time"

	"github.com/google/uuid"

	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
)

// Grant records a verified unlock for one survey in one session. The grant
// retains the credential, never the KEK: key material is re-derived from the
// credential on every access, so nothing stored here can decrypt a survey on
// its own if the wrap state is later rotated or revoked.
//
// Exactly one credential field is meaningful, selected by Method.
type Grant struct {
	SurveyID uuid.UUID
	Method   surveysDomain.UnlockMethod

	// Passphrase holds the password or recovery phrase for the password and
	// recovery methods.
	Passphrase string

	// OrgID names the organization whose master key unlocked the survey, for
	// the org method.
	OrgID uuid.NullUUID

	// Identity is the SSO binding for the oidc method.
	Identity surveysDomain.OIDCIdentity

	// VerifiedAt is when the credential was last proven. Expiry is absolute
	// from this instant; access does not extend it.
	VerifiedAt time.Time
}

// Expired reports whether the grant's absolute lifetime has elapsed at now.
func (g Grant) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(g.VerifiedAt.Add(ttl))
}
