// Package service implements the session unlock controller: grant storage
// keyed by (session, survey) and per-access KEK re-derivation with absolute
// expiry.
package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
)

// Store persists unlock grants keyed by session and survey. Implementations
// hold credentials in memory or in a server-side session backend; grants must
// never reach the client.
type Store interface {
	// Get returns the grant for (sessionID, surveyID) and whether one exists.
	Get(ctx context.Context, sessionID string, surveyID uuid.UUID) (sessionDomain.Grant, bool, error)

	// Put stores a grant, replacing any existing grant for the same survey.
	Put(ctx context.Context, sessionID string, grant sessionDomain.Grant) error

	// Delete removes the grant for one survey, if present.
	Delete(ctx context.Context, sessionID string, surveyID uuid.UUID) error

	// DeleteSession removes every grant held by the session.
	DeleteSession(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store. Suitable for a single-instance
// deployment; multi-instance deployments need a shared session backend.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[string]map[uuid.UUID]sessionDomain.Grant
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		grants: make(map[string]map[uuid.UUID]sessionDomain.Grant),
	}
}

// Get returns the grant for (sessionID, surveyID) and whether one exists.
func (s *MemoryStore) Get(_ context.Context, sessionID string, surveyID uuid.UUID) (sessionDomain.Grant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[sessionID][surveyID]
	return grant, ok, nil
}

// Put stores a grant, replacing any existing grant for the same survey.
func (s *MemoryStore) Put(_ context.Context, sessionID string, grant sessionDomain.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySurvey, ok := s.grants[sessionID]
	if !ok {
		bySurvey = make(map[uuid.UUID]sessionDomain.Grant)
		s.grants[sessionID] = bySurvey
	}
	bySurvey[grant.SurveyID] = grant
	return nil
}

// Delete removes the grant for one survey, if present.
func (s *MemoryStore) Delete(_ context.Context, sessionID string, surveyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySurvey, ok := s.grants[sessionID]
	if !ok {
		return nil
	}
	delete(bySurvey, surveyID)
	if len(bySurvey) == 0 {
		delete(s.grants, sessionID)
	}
	return nil
}

// DeleteSession removes every grant held by the session.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants, sessionID)
	return nil
}
