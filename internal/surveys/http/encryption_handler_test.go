package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/checktick/surveyvault/internal/session/domain"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubEncryptionUseCase implements EncryptionUseCase with overridable
// function fields; unset operations panic to catch unexpected calls.
type stubEncryptionUseCase struct {
	setupDual      func(ctx context.Context, surveyID uuid.UUID, password string, orgID uuid.NullUUID) (*surveysUseCase.SetupResult, error)
	setupSSO       func(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity, orgID uuid.NullUUID, withRecovery bool) (*surveysUseCase.SetupResult, error)
	unlockPassword func(ctx context.Context, sessionID string, surveyID uuid.UUID, password string) error
	unlockRecovery func(ctx context.Context, sessionID string, surveyID uuid.UUID, phrase string) error
	unlockOrg      func(ctx context.Context, sessionID string, surveyID uuid.UUID, orgID uuid.UUID) error
	unlockOIDC     func(ctx context.Context, sessionID string, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) error
	lock           func(ctx context.Context, sessionID string, surveyID uuid.UUID) error
	lockAll        func(ctx context.Context, sessionID string) error
	status         func(ctx context.Context, surveyID uuid.UUID) (*surveysUseCase.Status, error)
	canUnlock      func(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) (bool, error)
	verifyLegacy   func(ctx context.Context, surveyID uuid.UUID, key []byte) (bool, error)
	encrypt        func(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error)
	decrypt        func(ctx context.Context, sessionID string, surveyID uuid.UUID, blob []byte) (map[string]any, error)
	fingerprint    func(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error)
}

func (s *stubEncryptionUseCase) SetupDualEncryption(ctx context.Context, surveyID uuid.UUID, password string, orgID uuid.NullUUID) (*surveysUseCase.SetupResult, error) {
	return s.setupDual(ctx, surveyID, password, orgID)
}

func (s *stubEncryptionUseCase) SetupSSOEncryption(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity, orgID uuid.NullUUID, withRecovery bool) (*surveysUseCase.SetupResult, error) {
	return s.setupSSO(ctx, surveyID, identity, orgID, withRecovery)
}

func (s *stubEncryptionUseCase) UnlockWithPassword(ctx context.Context, sessionID string, surveyID uuid.UUID, password string) error {
	return s.unlockPassword(ctx, sessionID, surveyID, password)
}

func (s *stubEncryptionUseCase) UnlockWithRecovery(ctx context.Context, sessionID string, surveyID uuid.UUID, phrase string) error {
	return s.unlockRecovery(ctx, sessionID, surveyID, phrase)
}

func (s *stubEncryptionUseCase) UnlockWithOrgKey(ctx context.Context, sessionID string, surveyID uuid.UUID, orgID uuid.UUID) error {
	return s.unlockOrg(ctx, sessionID, surveyID, orgID)
}

func (s *stubEncryptionUseCase) UnlockWithOIDC(ctx context.Context, sessionID string, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) error {
	return s.unlockOIDC(ctx, sessionID, surveyID, identity)
}

func (s *stubEncryptionUseCase) Lock(ctx context.Context, sessionID string, surveyID uuid.UUID) error {
	return s.lock(ctx, sessionID, surveyID)
}

func (s *stubEncryptionUseCase) LockAll(ctx context.Context, sessionID string) error {
	return s.lockAll(ctx, sessionID)
}

func (s *stubEncryptionUseCase) Status(ctx context.Context, surveyID uuid.UUID) (*surveysUseCase.Status, error) {
	return s.status(ctx, surveyID)
}

func (s *stubEncryptionUseCase) CanUnlockAutomatically(ctx context.Context, surveyID uuid.UUID, identity surveysDomain.OIDCIdentity) (bool, error) {
	return s.canUnlock(ctx, surveyID, identity)
}

func (s *stubEncryptionUseCase) VerifyLegacyKey(ctx context.Context, surveyID uuid.UUID, key []byte) (bool, error) {
	return s.verifyLegacy(ctx, surveyID, key)
}

func (s *stubEncryptionUseCase) EncryptDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error) {
	return s.encrypt(ctx, sessionID, surveyID, demographics)
}

func (s *stubEncryptionUseCase) DecryptDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, blob []byte) (map[string]any, error) {
	return s.decrypt(ctx, sessionID, surveyID, blob)
}

func (s *stubEncryptionUseCase) FingerprintDemographics(ctx context.Context, sessionID string, surveyID uuid.UUID, demographics map[string]any) ([]byte, error) {
	return s.fingerprint(ctx, sessionID, surveyID, demographics)
}

func newEncryptionRouter(useCase surveysUseCase.EncryptionUseCase) *gin.Engine {
	handler := NewEncryptionHandler(useCase, testLogger())
	router := gin.New()

	router.POST("/v1/surveys/:survey_id/encryption/dual", handler.SetupDualHandler)
	router.POST("/v1/surveys/:survey_id/encryption/sso", handler.SetupSSOHandler)
	router.GET("/v1/surveys/:survey_id/encryption", handler.StatusHandler)
	router.POST("/v1/surveys/:survey_id/encryption/can-unlock", handler.CanUnlockHandler)
	router.POST("/v1/surveys/:survey_id/unlock/password", handler.UnlockPasswordHandler)
	router.POST("/v1/surveys/:survey_id/unlock/recovery", handler.UnlockRecoveryHandler)
	router.POST("/v1/surveys/:survey_id/unlock/org", handler.UnlockOrgHandler)
	router.POST("/v1/surveys/:survey_id/unlock/oidc", handler.UnlockOIDCHandler)
	router.POST("/v1/surveys/:survey_id/lock", handler.LockHandler)
	router.POST("/v1/sessions/lock-all", handler.LockAllHandler)
	router.POST("/v1/surveys/:survey_id/legacy-key/verify", handler.VerifyLegacyKeyHandler)
	router.POST("/v1/surveys/:survey_id/demographics/encrypt", handler.EncryptDemographicsHandler)
	router.POST("/v1/surveys/:survey_id/demographics/decrypt", handler.DecryptDemographicsHandler)
	router.POST("/v1/surveys/:survey_id/demographics/fingerprint", handler.FingerprintDemographicsHandler)

	return router
}

func doJSON(router *gin.Engine, method, url, sessionID string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEncryptionHandler_SetupDual(t *testing.T) {
	surveyID := uuid.New()
	words := []string{
		"apple", "banana", "cat", "dog", "eagle", "fish",
		"goat", "horse", "iguana", "jelly", "kiwi", "lemon",
	}

	useCase := &stubEncryptionUseCase{
		setupDual: func(_ context.Context, id uuid.UUID, password string, _ uuid.NullUUID) (*surveysUseCase.SetupResult, error) {
			return &surveysUseCase.SetupResult{
				State: &surveysDomain.SurveyEncryption{
					SurveyID:        id,
					WrappedPassword: []byte("wrap-pw"),
					WrappedRecovery: []byte("wrap-rec"),
					RecoveryHint:    "apple...lemon",
				},
				RecoveryWords: words,
				RecoveryHint:  "apple...lemon",
			}, nil
		},
	}
	router := newEncryptionRouter(useCase)

	t.Run("success returns recovery words once", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/dual", "",
			gin.H{"password": "correct horse battery"})
		require.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, surveyID.String(), response["survey_id"])
		assert.Len(t, response["recovery_words"], 12)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/dual", "",
			gin.H{"password": "short"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("invalid survey id", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/not-a-uuid/encryption/dual", "",
			gin.H{"password": "correct horse battery"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/dual",
			bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEncryptionHandler_SetupSSO(t *testing.T) {
	surveyID := uuid.New()
	userID := uuid.New()

	useCase := &stubEncryptionUseCase{
		setupSSO: func(_ context.Context, id uuid.UUID, identity surveysDomain.OIDCIdentity, _ uuid.NullUUID, withRecovery bool) (*surveysUseCase.SetupResult, error) {
			assert.Equal(t, surveysDomain.ProviderGoogle, identity.Provider)
			assert.True(t, withRecovery)
			return &surveysUseCase.SetupResult{
				State: &surveysDomain.SurveyEncryption{
					SurveyID:        id,
					WrappedOIDC:     []byte("wrap-oidc"),
					WrappedRecovery: []byte("wrap-rec"),
				},
			}, nil
		},
	}
	router := newEncryptionRouter(useCase)

	t.Run("success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/sso", "",
			gin.H{
				"user_id":       userID.String(),
				"provider":      "google",
				"subject":       "sub-12345",
				"with_recovery": true,
			})
		require.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		status := response["status"].(map[string]any)
		assert.Equal(t, true, status["has_oidc_encryption"])
	})

	t.Run("unsupported provider rejected", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/sso", "",
			gin.H{"user_id": userID.String(), "provider": "github", "subject": "sub-12345"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEncryptionHandler_UnlockPassword(t *testing.T) {
	surveyID := uuid.New()

	t.Run("success", func(t *testing.T) {
		useCase := &stubEncryptionUseCase{
			unlockPassword: func(_ context.Context, sessionID string, id uuid.UUID, password string) error {
				assert.Equal(t, "session-1", sessionID)
				assert.Equal(t, "my password", password)
				return nil
			},
		}
		router := newEncryptionRouter(useCase)

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/unlock/password", "session-1",
			gin.H{"password": "my password"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "unlocked")
	})

	t.Run("wrong password maps to 401", func(t *testing.T) {
		useCase := &stubEncryptionUseCase{
			unlockPassword: func(context.Context, string, uuid.UUID, string) error {
				return sessionDomain.ErrSurveyLocked
			},
		}
		router := newEncryptionRouter(useCase)

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/unlock/password", "session-1",
			gin.H{"password": "wrong password"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing session header", func(t *testing.T) {
		router := newEncryptionRouter(&stubEncryptionUseCase{})

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/unlock/password", "",
			gin.H{"password": "my password"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEncryptionHandler_UnlockRecovery(t *testing.T) {
	surveyID := uuid.New()
	phrase := "apple banana cat dog eagle fish goat horse iguana jelly kiwi lemon"

	useCase := &stubEncryptionUseCase{
		unlockRecovery: func(_ context.Context, _ string, _ uuid.UUID, got string) error {
			assert.Equal(t, phrase, got)
			return nil
		},
	}
	router := newEncryptionRouter(useCase)

	t.Run("success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/unlock/recovery", "session-1",
			gin.H{"phrase": phrase})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong word count rejected before usecase", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/unlock/recovery", "session-1",
			gin.H{"phrase": "too few words"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEncryptionHandler_Lock(t *testing.T) {
	surveyID := uuid.New()
	locked := false

	useCase := &stubEncryptionUseCase{
		lock: func(_ context.Context, sessionID string, _ uuid.UUID) error {
			locked = true
			assert.Equal(t, "session-1", sessionID)
			return nil
		},
		lockAll: func(_ context.Context, sessionID string) error {
			assert.Equal(t, "session-1", sessionID)
			return nil
		},
	}
	router := newEncryptionRouter(useCase)

	t.Run("lock one survey", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/lock", "session-1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, locked)
	})

	t.Run("lock all", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/v1/sessions/lock-all", "session-1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestEncryptionHandler_Status(t *testing.T) {
	surveyID := uuid.New()

	useCase := &stubEncryptionUseCase{
		status: func(_ context.Context, id uuid.UUID) (*surveysUseCase.Status, error) {
			return &surveysUseCase.Status{
				SurveyID:          id,
				HasDualEncryption: true,
				HasAnyEncryption:  true,
				RecoveryHint:      "apple...lemon",
			}, nil
		},
	}
	router := newEncryptionRouter(useCase)

	w := doJSON(router, http.MethodGet, "/v1/surveys/"+surveyID.String()+"/encryption", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["has_dual_encryption"])
	assert.Equal(t, "apple...lemon", response["recovery_hint"])
}

func TestEncryptionHandler_Demographics(t *testing.T) {
	surveyID := uuid.New()

	t.Run("encrypt returns base64 blob", func(t *testing.T) {
		useCase := &stubEncryptionUseCase{
			encrypt: func(_ context.Context, _ string, _ uuid.UUID, demographics map[string]any) ([]byte, error) {
				assert.Equal(t, "65-74", demographics["age_band"])
				return []byte("ciphertext"), nil
			},
		}
		router := newEncryptionRouter(useCase)

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/demographics/encrypt", "session-1",
			gin.H{"demographics": gin.H{"age_band": "65-74"}})
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response["blob"])
	})

	t.Run("decrypt rejects invalid base64", func(t *testing.T) {
		router := newEncryptionRouter(&stubEncryptionUseCase{})

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/demographics/decrypt", "session-1",
			gin.H{"blob": "!!not-base64!!"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("decrypt with expired grant maps to 401", func(t *testing.T) {
		useCase := &stubEncryptionUseCase{
			decrypt: func(context.Context, string, uuid.UUID, []byte) (map[string]any, error) {
				return nil, sessionDomain.ErrGrantExpired
			},
		}
		router := newEncryptionRouter(useCase)

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/demographics/decrypt", "session-1",
			gin.H{"blob": "Y2lwaGVydGV4dA=="})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "grant_expired")
	})

	t.Run("fingerprint", func(t *testing.T) {
		useCase := &stubEncryptionUseCase{
			fingerprint: func(context.Context, string, uuid.UUID, map[string]any) ([]byte, error) {
				return []byte{0x01, 0x02}, nil
			},
		}
		router := newEncryptionRouter(useCase)

		w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/demographics/fingerprint", "session-1",
			gin.H{"demographics": gin.H{"age_band": "65-74"}})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestEncryptionHandler_VerifyLegacyKey(t *testing.T) {
	surveyID := uuid.New()

	useCase := &stubEncryptionUseCase{
		verifyLegacy: func(_ context.Context, _ uuid.UUID, key []byte) (bool, error) {
			return string(key) == "legacy-key", nil
		},
	}
	router := newEncryptionRouter(useCase)

	w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/legacy-key/verify", "",
		gin.H{"key": "bGVnYWN5LWtleQ=="})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["valid"])
}

func TestEncryptionHandler_CanUnlock(t *testing.T) {
	surveyID := uuid.New()
	userID := uuid.New()

	useCase := &stubEncryptionUseCase{
		canUnlock: func(_ context.Context, _ uuid.UUID, identity surveysDomain.OIDCIdentity) (bool, error) {
			return identity.Subject == "sub-12345", nil
		},
	}
	router := newEncryptionRouter(useCase)

	w := doJSON(router, http.MethodPost, "/v1/surveys/"+surveyID.String()+"/encryption/can-unlock", "",
		gin.H{"user_id": userID.String(), "provider": "azure", "subject": "sub-12345"})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["can_unlock"])
}
