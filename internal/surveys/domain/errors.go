package domain

import (
	"github.com/checktick/surveyvault/internal/errors"
)

// Setup-time errors. These indicate caller misconfiguration and are raised
// immediately; unlock-time secret mismatch never produces an error (unlock
// functions return a boolean and fail closed).
var (
	// ErrMissingMasterKey indicates org escrow was requested for an
	// organization without a master key.
	ErrMissingMasterKey = errors.Wrap(errors.ErrInvalidInput, "organization has no master key")

	// ErrMissingOIDCIdentity indicates OIDC wrapping was requested for a user
	// with no SSO binding.
	ErrMissingOIDCIdentity = errors.Wrap(errors.ErrInvalidInput, "user has no OIDC identity")

	// ErrAlreadyEncrypted indicates a second KEK generation was attempted for
	// a survey that already has encryption installed. The KEK is generated in
	// at most one event per survey; additional paths wrap the existing KEK.
	ErrAlreadyEncrypted = errors.Wrap(errors.ErrConflict, "survey encryption already configured")

	// ErrSurveyNotFound indicates no encryption state exists for the survey.
	ErrSurveyNotFound = errors.Wrap(errors.ErrNotFound, "survey encryption state")

	// ErrOrganizationNotFound indicates the organization does not exist.
	ErrOrganizationNotFound = errors.Wrap(errors.ErrNotFound, "organization")
)
