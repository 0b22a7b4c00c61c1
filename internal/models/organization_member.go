package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrganizationRole string

const (
	RoleAdmin       OrganizationRole = "admin"
	RoleOrganizador OrganizationRole = "organizador"
	RoleMembro      OrganizationRole = "membro"
)

// IsValid reports whether the role is one of the closed set.
func (r OrganizationRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOrganizador, RoleMembro:
		return true
	}
	return false
}

// OrganizationMember links a user to an organization. The
// (organization_id, user_id) pair is unique across active and inactive rows,
// so re-adding a soft-deleted member reactivates the original row.
type OrganizationMember struct {
	ID             string            `gorm:"type:text;primarykey" json:"id"`
	OrganizationID string            `gorm:"type:text;not null;uniqueIndex:idx_org_members_org_user,priority:1;index:idx_org_members_org" json:"organization_id"`
	UserID         string            `gorm:"type:text;not null;uniqueIndex:idx_org_members_org_user,priority:2;index:idx_org_members_user" json:"user_id"`
	Role           OrganizationRole  `gorm:"type:varchar(20);not null;default:'membro'" json:"role"`
	IsOwner        bool              `gorm:"default:false" json:"is_owner"`
	Preferences    datatypes.JSONMap `gorm:"type:jsonb" json:"preferences,omitempty"`
	FlActive       bool              `gorm:"default:true" json:"fl_active"`
	JoinedAt       time.Time         `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *OrganizationMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

// IsAdminOrOwner reports whether the member can perform privileged
// organization actions.
func (m *OrganizationMember) IsAdminOrOwner() bool {
	return m.Role == RoleAdmin || m.IsOwner
}
