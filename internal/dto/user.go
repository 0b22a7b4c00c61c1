package dto

import (
	"time"

	"github.com/gabrieudev/marcahora/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	EmailVerified bool              `json:"email_verified"`
	Image         string            `json:"image,omitempty"`
	Status        models.UserStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// UserSummaryDTO is the denormalized user block nested in member responses
type UserSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
		Status:        user.Status,
		CreatedAt:     user.CreatedAt,
	}
}

// ToUserSummaryDTO converts a user to the nested summary shape
func ToUserSummaryDTO(user models.User) *UserSummaryDTO {
	return &UserSummaryDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
	}
}
