package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/checktick/surveyvault/internal/httputil"
	"github.com/checktick/surveyvault/internal/surveys/http/dto"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
	customValidation "github.com/checktick/surveyvault/internal/validation"
)

// OrganizationHandler handles HTTP requests for organization management.
type OrganizationHandler struct {
	organizationUseCase surveysUseCase.OrganizationUseCase
	logger              *slog.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(
	organizationUseCase surveysUseCase.OrganizationUseCase,
	logger *slog.Logger,
) *OrganizationHandler {
	return &OrganizationHandler{
		organizationUseCase: organizationUseCase,
		logger:              logger,
	}
}

// CreateHandler creates an organization with a fresh master key.
// POST /v1/organizations
// Returns 201 Created with organization metadata (never the master key).
func (h *OrganizationHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	org, err := h.organizationUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOrganizationToResponse(org))
}

// GetHandler retrieves an organization by ID.
// GET /v1/organizations/:organization_id
func (h *OrganizationHandler) GetHandler(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("organization_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid organization_id: must be a UUID"),
			h.logger,
		)
		return
	}

	org, err := h.organizationUseCase.Get(c.Request.Context(), orgID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOrganizationToResponse(org))
}
