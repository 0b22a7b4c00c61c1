package handlers

import (
	"errors"
	"net/http"

	"github.com/gabrieudev/marcahora/internal/dto"
	apierrors "github.com/gabrieudev/marcahora/internal/errors"
	"github.com/gabrieudev/marcahora/internal/middleware"
	"github.com/gabrieudev/marcahora/internal/models"
	"github.com/gabrieudev/marcahora/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// MemberHandler coordinates organization membership HTTP handlers.
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// AddMember adds a user to the organization by ID or email.
func (h *MemberHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AddMemberRequest struct {
		UserIDOrEmail string                 `json:"userIdOrEmail" binding:"required"`
		Role          string                 `json:"role" binding:"omitempty,oneof=admin organizador membro"`
		Preferences   map[string]interface{} `json:"preferences"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	member, err := h.memberService.AddMember(c.Param("organizationId"), services.AddMemberInput{
		UserIDOrEmail: req.UserIDOrEmail,
		Role:          models.OrganizationRole(req.Role),
		Preferences:   datatypes.JSONMap(req.Preferences),
	}, userID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// ListMembers lists the organization's members.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	members, err := h.memberService.FindAll(c.Param("organizationId"), includeInactive)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	if members == nil {
		members = []dto.MemberDTO{}
	}
	c.JSON(http.StatusOK, members)
}

// GetMyMemberships lists the caller's memberships across organizations.
func (h *MemberHandler) GetMyMemberships(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	includeInactive := c.Query("includeInactive") == "true"

	memberships, err := h.memberService.GetMyMemberships(userID, includeInactive)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	if memberships == nil {
		memberships = []dto.MemberDTO{}
	}
	c.JSON(http.StatusOK, memberships)
}

// GetMember fetches a single member of the organization.
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.memberService.FindOne(c.Param("organizationId"), c.Param("memberId"))
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateMember applies a partial patch to a member.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateMemberRequest struct {
		Role        *string                 `json:"role" binding:"omitempty,oneof=admin organizador membro"`
		Preferences *map[string]interface{} `json:"preferences"`
		FlActive    *bool                   `json:"flActive"`
		IsOwner     *bool                   `json:"isOwner"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	input := services.UpdateMemberInput{
		FlActive: req.FlActive,
		IsOwner:  req.IsOwner,
	}
	if req.Role != nil {
		role := models.OrganizationRole(*req.Role)
		input.Role = &role
	}
	if req.Preferences != nil {
		prefs := datatypes.JSONMap(*req.Preferences)
		input.Preferences = &prefs
	}

	member, err := h.memberService.Update(c.Param("organizationId"), c.Param("memberId"), input, userID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// RemoveMember soft-deletes a member from the organization.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	err := h.memberService.Remove(c.Param("organizationId"), c.Param("memberId"), userID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferOwnership moves organization ownership to another active member.
func (h *MemberHandler) TransferOwnership(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type TransferOwnershipRequest struct {
		NewOwnerUserID string `json:"newOwnerUserId" binding:"required"`
	}

	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	member, err := h.memberService.TransferOwnership(c.Param("organizationId"), services.TransferOwnershipInput{
		NewOwnerUserID: req.NewOwnerUserID,
	}, userID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// LeaveOrganization soft-deletes the caller's own membership.
func (h *MemberHandler) LeaveOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.memberService.LeaveOrganization(c.Param("organizationId"), userID); err != nil {
		respondMemberError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondMemberError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrTargetUserNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrNewOwnerNotActiveMember),
		errors.Is(err, services.ErrTransferTargetNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember),
		errors.Is(err, services.ErrOnlyAdminsCanAddMembers),
		errors.Is(err, services.ErrCannotUpdateMember),
		errors.Is(err, services.ErrOnlyOwnPreferences),
		errors.Is(err, services.ErrCannotRemoveMember),
		errors.Is(err, services.ErrOnlyOwnerCanTransfer):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrMemberLimitReached),
		errors.Is(err, services.ErrCannotCreateSecondOwner),
		errors.Is(err, services.ErrOwnerMustBeAdmin),
		errors.Is(err, services.ErrCannotChangeOwnerFlag),
		errors.Is(err, services.ErrOwnerCannotBeRemoved),
		errors.Is(err, services.ErrCannotRemoveLastAdmin),
		errors.Is(err, services.ErrAlreadyOwner),
		errors.Is(err, services.ErrOwnerCannotLeave),
		errors.Is(err, services.ErrCannotLeaveAsLastAdmin):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
