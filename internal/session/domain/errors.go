package domain

import (
	"github.com/checktick/surveyvault/internal/errors"
)

var (
	// ErrSurveyLocked indicates the session holds no usable grant for the
	// survey. Returned both when no grant exists and when re-derivation from
	// a stored grant fails, so the two cases are indistinguishable to callers.
	ErrSurveyLocked = errors.Wrap(errors.ErrUnauthorized, "survey is locked for this session")

	// ErrGrantExpired indicates the grant's absolute lifetime elapsed. The
	// user must re-enter the credential.
	ErrGrantExpired = errors.Wrap(errors.ErrExpired, "survey unlock has expired")
)
