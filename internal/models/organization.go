package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Organization struct {
	ID        string            `gorm:"type:text;primarykey" json:"id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string            `gorm:"type:varchar(255);uniqueIndex:idx_organizations_slug;not null" json:"slug"`
	OwnerID   string            `gorm:"type:text;not null;index" json:"owner_id"`
	Settings  datatypes.JSONMap `gorm:"type:jsonb" json:"settings,omitempty"`
	FlActive  bool              `gorm:"default:true" json:"fl_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Relations
	Owner   User                 `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
