// Package http provides HTTP handlers for the survey encryption API: setup of
// wrap paths, session-scoped unlock and lock, and demographics encryption.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/checktick/surveyvault/internal/httputil"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	"github.com/checktick/surveyvault/internal/surveys/http/dto"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
	customValidation "github.com/checktick/surveyvault/internal/validation"
)

// SessionHeader names the header carrying the caller's session identifier.
// Grants created by unlock operations are scoped to this value; the API never
// returns key material, so the session ID is the only handle a caller holds.
const SessionHeader = "X-Session-Id"

// EncryptionHandler handles HTTP requests for survey encryption operations.
type EncryptionHandler struct {
	encryptionUseCase surveysUseCase.EncryptionUseCase
	logger            *slog.Logger
}

// NewEncryptionHandler creates a new encryption handler with required dependencies.
func NewEncryptionHandler(
	encryptionUseCase surveysUseCase.EncryptionUseCase,
	logger *slog.Logger,
) *EncryptionHandler {
	return &EncryptionHandler{
		encryptionUseCase: encryptionUseCase,
		logger:            logger,
	}
}

// surveyID extracts and parses the survey ID URL parameter. Writes a
// validation error response and returns false when the parameter is not a
// UUID.
func (h *EncryptionHandler) surveyID(c *gin.Context) (uuid.UUID, bool) {
	surveyID, err := uuid.Parse(c.Param("survey_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid survey_id: must be a UUID"),
			h.logger,
		)
		return uuid.Nil, false
	}
	return surveyID, true
}

// sessionID extracts the session identifier header. Writes a validation error
// response and returns false when the header is missing.
func (h *EncryptionHandler) sessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("missing %s header", SessionHeader),
			h.logger,
		)
		return "", false
	}
	return sessionID, true
}

// SetupDualHandler installs password+recovery encryption on a survey.
// POST /v1/surveys/:survey_id/encryption/dual
// Returns 201 Created with the recovery words (shown exactly once).
func (h *EncryptionHandler) SetupDualHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}

	var req dto.SetupDualEncryptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	orgID, err := parseNullUUID(req.OrganizationID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.encryptionUseCase.SetupDualEncryption(c.Request.Context(), surveyID, req.Password, orgID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSetupResultToResponse(result))
}

// SetupSSOHandler installs OIDC encryption on a survey.
// POST /v1/surveys/:survey_id/encryption/sso
// Returns 201 Created; includes recovery words when the user opted in.
func (h *EncryptionHandler) SetupSSOHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}

	var req dto.SetupSSOEncryptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	identity, err := parseIdentity(req.UserID, req.Provider, req.Subject)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	orgID, err := parseNullUUID(req.OrganizationID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.encryptionUseCase.SetupSSOEncryption(
		c.Request.Context(), surveyID, identity, orgID, req.WithRecovery,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSetupResultToResponse(result))
}

// UnlockPasswordHandler verifies a password and grants the session access.
// POST /v1/surveys/:survey_id/unlock/password
func (h *EncryptionHandler) UnlockPasswordHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.UnlockPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.encryptionUseCase.UnlockWithPassword(c.Request.Context(), sessionID, surveyID, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.UnlockResponse{SurveyID: surveyID.String(), Status: "unlocked"})
}

// UnlockRecoveryHandler verifies a recovery phrase and grants the session access.
// POST /v1/surveys/:survey_id/unlock/recovery
func (h *EncryptionHandler) UnlockRecoveryHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.UnlockRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.encryptionUseCase.UnlockWithRecovery(c.Request.Context(), sessionID, surveyID, req.Phrase)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.UnlockResponse{SurveyID: surveyID.String(), Status: "unlocked"})
}

// UnlockOrgHandler verifies the organization's master key and grants the session access.
// POST /v1/surveys/:survey_id/unlock/org
func (h *EncryptionHandler) UnlockOrgHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.UnlockOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid organization_id: must be a UUID"), h.logger)
		return
	}

	err = h.encryptionUseCase.UnlockWithOrgKey(c.Request.Context(), sessionID, surveyID, orgID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.UnlockResponse{SurveyID: surveyID.String(), Status: "unlocked"})
}

// UnlockOIDCHandler verifies an SSO identity and grants the session access.
// POST /v1/surveys/:survey_id/unlock/oidc
func (h *EncryptionHandler) UnlockOIDCHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.OIDCIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	identity, err := parseIdentity(req.UserID, req.Provider, req.Subject)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.encryptionUseCase.UnlockWithOIDC(c.Request.Context(), sessionID, surveyID, identity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.UnlockResponse{SurveyID: surveyID.String(), Status: "unlocked"})
}

// LockHandler discards the session's grant for one survey.
// POST /v1/surveys/:survey_id/lock
// Returns 204 No Content.
func (h *EncryptionHandler) LockHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.encryptionUseCase.Lock(c.Request.Context(), sessionID, surveyID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// LockAllHandler discards every grant held by the session.
// POST /v1/sessions/lock-all
// Returns 204 No Content.
func (h *EncryptionHandler) LockAllHandler(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.encryptionUseCase.LockAll(c.Request.Context(), sessionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// StatusHandler returns the wrap-state predicates and recovery hint.
// GET /v1/surveys/:survey_id/encryption
func (h *EncryptionHandler) StatusHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}

	status, err := h.encryptionUseCase.Status(c.Request.Context(), surveyID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}

// CanUnlockHandler reports whether the identity can unlock the survey without
// a user-supplied secret.
// POST /v1/surveys/:survey_id/encryption/can-unlock
func (h *EncryptionHandler) CanUnlockHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}

	var req dto.OIDCIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	identity, err := parseIdentity(req.UserID, req.Provider, req.Subject)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	canUnlock, err := h.encryptionUseCase.CanUnlockAutomatically(c.Request.Context(), surveyID, identity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CanUnlockResponse{SurveyID: surveyID.String(), CanUnlock: canUnlock})
}

// VerifyLegacyKeyHandler checks a submitted opaque key against the deprecated
// verification-only record.
// POST /v1/surveys/:survey_id/legacy-key/verify
func (h *EncryptionHandler) VerifyLegacyKeyHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}

	var req dto.VerifyLegacyKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := dto.DecodeBlob(req.Key)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 key: %w", err), h.logger)
		return
	}

	valid, err := h.encryptionUseCase.VerifyLegacyKey(c.Request.Context(), surveyID, key)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyLegacyKeyResponse{SurveyID: surveyID.String(), Valid: valid})
}

// EncryptDemographicsHandler seals a demographic dictionary using the
// session's grant for the survey.
// POST /v1/surveys/:survey_id/demographics/encrypt
func (h *EncryptionHandler) EncryptDemographicsHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.EncryptDemographicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	blob, err := h.encryptionUseCase.EncryptDemographics(c.Request.Context(), sessionID, surveyID, req.Demographics)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EncryptedDemographicsResponse{
		SurveyID: surveyID.String(),
		Blob:     dto.EncodeBlob(blob),
	})
}

// DecryptDemographicsHandler opens a demographics blob using the session's grant.
// POST /v1/surveys/:survey_id/demographics/decrypt
func (h *EncryptionHandler) DecryptDemographicsHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.DecryptDemographicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	blob, err := dto.DecodeBlob(req.Blob)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 blob: %w", err), h.logger)
		return
	}

	demographics, err := h.encryptionUseCase.DecryptDemographics(c.Request.Context(), sessionID, surveyID, blob)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DemographicsResponse{
		SurveyID:     surveyID.String(),
		Demographics: demographics,
	})
}

// FingerprintDemographicsHandler returns the duplicate-detection fingerprint
// of a demographic dictionary, keyed by the session's KEK for the survey.
// POST /v1/surveys/:survey_id/demographics/fingerprint
func (h *EncryptionHandler) FingerprintDemographicsHandler(c *gin.Context) {
	surveyID, ok := h.surveyID(c)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.EncryptDemographicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	fingerprint, err := h.encryptionUseCase.FingerprintDemographics(
		c.Request.Context(), sessionID, surveyID, req.Demographics,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.FingerprintResponse{
		SurveyID:    surveyID.String(),
		Fingerprint: dto.EncodeBlob(fingerprint),
	})
}

// parseNullUUID parses an optional UUID string into a uuid.NullUUID.
func parseNullUUID(s string) (uuid.NullUUID, error) {
	if s == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("invalid organization_id: must be a UUID")
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// parseIdentity converts request identity fields into a domain identity.
func parseIdentity(userID, provider, subject string) (surveysDomain.OIDCIdentity, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return surveysDomain.OIDCIdentity{}, fmt.Errorf("invalid user_id: must be a UUID")
	}
	return surveysDomain.OIDCIdentity{
		UserID:   id,
		Provider: surveysDomain.OIDCProvider(provider),
		Subject:  subject,
	}, nil
}
