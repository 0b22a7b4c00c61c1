package dto

import (
	"time"

	"github.com/gabrieudev/marcahora/internal/models"
	"gorm.io/datatypes"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	OwnerID   string            `json:"owner_id"`
	Settings  datatypes.JSONMap `json:"settings,omitempty"`
	FlActive  bool              `json:"fl_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OrganizationSummaryDTO is the denormalized organization block nested in
// membership responses
type OrganizationSummaryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ToOrganizationDTO converts an organization to DTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		OwnerID:   org.OwnerID,
		Settings:  org.Settings,
		FlActive:  org.FlActive,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

// ToOrganizationDTOs converts a slice of organizations to DTOs
func ToOrganizationDTOs(orgs []models.Organization) []OrganizationDTO {
	dtos := make([]OrganizationDTO, len(orgs))
	for i, org := range orgs {
		dtos[i] = ToOrganizationDTO(org)
	}
	return dtos
}

// ToOrganizationSummaryDTO converts an organization to the nested summary shape
func ToOrganizationSummaryDTO(org models.Organization) *OrganizationSummaryDTO {
	return &OrganizationSummaryDTO{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	}
}
