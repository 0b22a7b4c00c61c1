package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
	UserStatusInvited   UserStatus = "invited"
)

type User struct {
	ID            string            `gorm:"type:text;primarykey" json:"id"`
	Name          string            `gorm:"type:varchar(255);not null" json:"name"`
	Email         string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	EmailVerified bool              `gorm:"default:false" json:"email_verified"`
	Image         string            `gorm:"type:text" json:"image,omitempty"`
	PasswordHash  string            `gorm:"type:varchar(255);not null" json:"-"`
	Status        UserStatus        `gorm:"type:varchar(20);default:'active'" json:"status"`
	Profile       datatypes.JSONMap `gorm:"type:jsonb" json:"profile,omitempty"`
	LastSigninAt  *time.Time        `json:"last_signin_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Relations
	Memberships []OrganizationMember `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
