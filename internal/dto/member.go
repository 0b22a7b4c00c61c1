package dto

import (
	"time"

	"github.com/gabrieudev/marcahora/internal/models"
	"gorm.io/datatypes"
)

// MemberDTO represents an organization member in API responses, optionally
// enriched with a user summary (org-scoped listings) or an organization
// summary (per-user membership listings).
type MemberDTO struct {
	ID             string                  `json:"id"`
	OrganizationID string                  `json:"organization_id"`
	UserID         string                  `json:"user_id"`
	Role           models.OrganizationRole `json:"role"`
	IsOwner        bool                    `json:"is_owner"`
	Preferences    datatypes.JSONMap       `json:"preferences,omitempty"`
	FlActive       bool                    `json:"fl_active"`
	JoinedAt       time.Time               `json:"joined_at"`
	User           *UserSummaryDTO         `json:"user,omitempty"`
	Organization   *OrganizationSummaryDTO `json:"organization,omitempty"`
}

// ToMemberDTO converts a member to DTO without nested summaries
func ToMemberDTO(member models.OrganizationMember) MemberDTO {
	return MemberDTO{
		ID:             member.ID,
		OrganizationID: member.OrganizationID,
		UserID:         member.UserID,
		Role:           member.Role,
		IsOwner:        member.IsOwner,
		Preferences:    member.Preferences,
		FlActive:       member.FlActive,
		JoinedAt:       member.JoinedAt,
	}
}

// ToMemberWithUserDTO converts a member to DTO with the user summary attached
func ToMemberWithUserDTO(member models.OrganizationMember, user models.User) MemberDTO {
	out := ToMemberDTO(member)
	out.User = ToUserSummaryDTO(user)
	return out
}

// ToMemberWithOrganizationDTO converts a membership to DTO with the
// organization summary attached
func ToMemberWithOrganizationDTO(member models.OrganizationMember, org models.Organization) MemberDTO {
	out := ToMemberDTO(member)
	out.Organization = ToOrganizationSummaryDTO(org)
	return out
}
