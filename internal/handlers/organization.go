package handlers

import (
	"errors"
	"net/http"

	"github.com/gabrieudev/marcahora/internal/dto"
	apierrors "github.com/gabrieudev/marcahora/internal/errors"
	"github.com/gabrieudev/marcahora/internal/middleware"
	"github.com/gabrieudev/marcahora/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// OrganizationHandler coordinates organization CRUD HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates an organization owned by the caller.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateOrganizationRequest struct {
		Name     string                 `json:"name" binding:"required"`
		Slug     string                 `json:"slug" binding:"required"`
		Settings map[string]interface{} `json:"settings"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	org, err := h.orgService.Create(services.CreateOrganizationInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Settings: datatypes.JSONMap(req.Settings),
	}, userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// ListOrganizations lists active organizations the caller owns and belongs to.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgs, err := h.orgService.FindAllActiveByMember(userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	if orgs == nil {
		orgs = []dto.OrganizationDTO{}
	}
	c.JSON(http.StatusOK, orgs)
}

// SearchOrganizations searches active organizations by name.
func (h *OrganizationHandler) SearchOrganizations(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		apierrors.BadRequest(c, "Parâmetro de busca 'name' é obrigatório")
		return
	}

	orgs, err := h.orgService.Search(name)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	if orgs == nil {
		orgs = []dto.OrganizationDTO{}
	}
	c.JSON(http.StatusOK, orgs)
}

// GetMyOrganizations lists organizations owned by the caller.
func (h *OrganizationHandler) GetMyOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgs, err := h.orgService.GetUserOrganizations(userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	if orgs == nil {
		orgs = []dto.OrganizationDTO{}
	}
	c.JSON(http.StatusOK, orgs)
}

// GetOrganization fetches an organization by ID.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.orgService.FindOne(c.Param("organizationId"))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateOrganization applies a partial patch to an organization.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateOrganizationRequest struct {
		Name     *string                 `json:"name"`
		Slug     *string                 `json:"slug"`
		Settings *map[string]interface{} `json:"settings"`
		FlActive *bool                   `json:"flActive"`
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	input := services.UpdateOrganizationInput{
		Name:     req.Name,
		Slug:     req.Slug,
		FlActive: req.FlActive,
	}
	if req.Settings != nil {
		settings := datatypes.JSONMap(*req.Settings)
		input.Settings = &settings
	}

	org, err := h.orgService.Update(c.Param("organizationId"), input, userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// DeleteOrganization soft-deletes an organization.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.orgService.Remove(c.Param("organizationId"), userID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSlugTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrOnlyOwnerCanUpdateOrg),
		errors.Is(err, services.ErrOnlyOwnerCanDeleteOrg):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidOrganizationSlug),
		errors.Is(err, services.ErrOrganizationLimitReached):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
