package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysService "github.com/checktick/surveyvault/internal/surveys/service"
)

// DefaultGrantTTL is the absolute lifetime of an unlock grant. Access within
// the window does not extend it; after expiry the credential must be entered
// again.
const DefaultGrantTTL = 30 * time.Minute

// OrganizationResolver fetches an organization so the controller can
// re-derive a KEK from an org-method grant.
type OrganizationResolver interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error)
}

// Controller mediates all KEK access within a session. It never caches key
// material: every SurveyKey call re-derives the KEK from the stored
// credential against the survey's current wrap state, so a rotated or revoked
// wrap takes effect immediately rather than at session end.
type Controller struct {
	store      Store
	keyWrapper surveysService.KeyWrapper
	orgs       OrganizationResolver
	ttl        time.Duration
	now        func() time.Time
}

// NewController creates a Controller. A non-positive ttl falls back to
// DefaultGrantTTL.
func NewController(
	store Store,
	keyWrapper surveysService.KeyWrapper,
	orgs OrganizationResolver,
	ttl time.Duration,
) *Controller {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &Controller{
		store:      store,
		keyWrapper: keyWrapper,
		orgs:       orgs,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Grant verifies that the grant's credential unlocks the survey's current
// wrap state, then stores it for the session. The returned KEK belongs to the
// caller for the current request only.
func (c *Controller) Grant(
	ctx context.Context,
	sessionID string,
	grant sessionDomain.Grant,
	state *surveysDomain.SurveyEncryption,
) ([]byte, error) {
	kek, err := c.rederive(ctx, grant, state)
	if err != nil {
		return nil, err
	}

	grant.VerifiedAt = c.now()
	if err := c.store.Put(ctx, sessionID, grant); err != nil {
		return nil, err
	}
	return kek, nil
}

// SurveyKey re-derives the survey KEK from the session's stored grant.
// Returns ErrSurveyLocked when no grant exists or the grant no longer
// unlocks the survey, and ErrGrantExpired when the grant's lifetime elapsed.
// Expired and defunct grants are purged before returning.
func (c *Controller) SurveyKey(
	ctx context.Context,
	sessionID string,
	state *surveysDomain.SurveyEncryption,
) ([]byte, error) {
	grant, ok, err := c.store.Get(ctx, sessionID, state.SurveyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sessionDomain.ErrSurveyLocked
	}

	if grant.Expired(c.now(), c.ttl) {
		if err := c.store.Delete(ctx, sessionID, state.SurveyID); err != nil {
			return nil, err
		}
		return nil, sessionDomain.ErrGrantExpired
	}

	kek, err := c.rederive(ctx, grant, state)
	if err != nil {
		if err := c.store.Delete(ctx, sessionID, state.SurveyID); err != nil {
			return nil, err
		}
		return nil, sessionDomain.ErrSurveyLocked
	}
	return kek, nil
}

// Unlocked reports whether the session holds a live grant for the survey,
// without deriving key material.
func (c *Controller) Unlocked(ctx context.Context, sessionID string, surveyID uuid.UUID) (bool, error) {
	grant, ok, err := c.store.Get(ctx, sessionID, surveyID)
	if err != nil {
		return false, err
	}
	return ok && !grant.Expired(c.now(), c.ttl), nil
}

// Lock discards the session's grant for one survey.
func (c *Controller) Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error {
	return c.store.Delete(ctx, sessionID, surveyID)
}

// LockAll discards every grant held by the session, e.g. at logout.
func (c *Controller) LockAll(ctx context.Context, sessionID string) error {
	return c.store.DeleteSession(ctx, sessionID)
}

// rederive recovers the KEK from a grant's credential. Any mismatch collapses
// to ErrSurveyLocked.
func (c *Controller) rederive(
	ctx context.Context,
	grant sessionDomain.Grant,
	state *surveysDomain.SurveyEncryption,
) ([]byte, error) {
	switch grant.Method {
	case surveysDomain.UnlockPassword:
		if kek, ok := c.keyWrapper.UnlockWithPassword(state, grant.Passphrase); ok {
			return kek, nil
		}
	case surveysDomain.UnlockRecovery:
		if kek, ok := c.keyWrapper.UnlockWithRecovery(state, grant.Passphrase); ok {
			return kek, nil
		}
	case surveysDomain.UnlockOrg:
		if !grant.OrgID.Valid {
			return nil, sessionDomain.ErrSurveyLocked
		}
		org, err := c.orgs.GetOrganization(ctx, grant.OrgID.UUID)
		if err != nil {
			return nil, sessionDomain.ErrSurveyLocked
		}
		if kek, ok := c.keyWrapper.UnlockWithOrgKey(state, org); ok {
			return kek, nil
		}
	case surveysDomain.UnlockOIDC:
		if kek, ok := c.keyWrapper.UnlockWithOIDC(state, grant.Identity); ok {
			return kek, nil
		}
	}
	// UnlockLegacy can verify a key but never re-derive one, so it falls
	// through to locked like any unknown method.
	return nil, sessionDomain.ErrSurveyLocked
}
