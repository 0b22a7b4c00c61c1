package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/dto"
	"github.com/gabrieudev/marcahora/internal/models"
	"github.com/gabrieudev/marcahora/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrganizationName  = errors.New("Nome da organização é obrigatório")
	ErrInvalidOrganizationSlug  = errors.New("Slug da organização é obrigatório")
	ErrSlugTaken                = errors.New("Slug já está em uso")
	ErrOrganizationLimitReached = errors.New("Limite de organizações atingido (máximo 10)")
	ErrOnlyOwnerCanUpdateOrg    = errors.New("Apenas o proprietário pode atualizar a organização")
	ErrOnlyOwnerCanDeleteOrg    = errors.New("Apenas o proprietário pode deletar a organização")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.MemberRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, memberRepo repository.MemberRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name     string
	Slug     string
	Settings datatypes.JSONMap
}

// UpdateOrganizationInput is a partial patch for an organization.
type UpdateOrganizationInput struct {
	Name     *string
	Slug     *string
	Settings *datatypes.JSONMap
	FlActive *bool
}

// Create creates an organization owned by the caller. The owner membership
// row (role admin, is_owner) is created in the same transaction, so the
// single-owner invariant holds from the organization's first instant.
func (s *OrganizationService) Create(input CreateOrganizationInput, userID string) (*dto.OrganizationDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidOrganizationName
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, ErrInvalidOrganizationSlug
	}

	if _, err := s.orgRepo.FindBySlug(input.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	owned, err := s.orgRepo.CountOwnedByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count organizations: %w", err)
	}
	if owned >= constants.MaxUserOrganizations {
		return nil, ErrOrganizationLimitReached
	}

	settings := input.Settings
	if settings == nil {
		settings = datatypes.JSONMap{}
	}

	org := &models.Organization{
		Name:     input.Name,
		Slug:     input.Slug,
		OwnerID:  userID,
		Settings: settings,
		FlActive: true,
	}
	member := &models.OrganizationMember{
		Role:        models.RoleAdmin,
		IsOwner:     true,
		Preferences: datatypes.JSONMap{},
		FlActive:    true,
	}

	if err := s.orgRepo.CreateWithOwner(org, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	out := dto.ToOrganizationDTO(*org)
	return &out, nil
}

// FindAllActive lists all active organizations.
func (s *OrganizationService) FindAllActive() ([]dto.OrganizationDTO, error) {
	orgs, err := s.orgRepo.FindAllActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return dto.ToOrganizationDTOs(orgs), nil
}

// FindAllActiveByMember lists active organizations the user owns and belongs to.
func (s *OrganizationService) FindAllActiveByMember(userID string) ([]dto.OrganizationDTO, error) {
	orgs, err := s.orgRepo.FindAllActiveByMember(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return dto.ToOrganizationDTOs(orgs), nil
}

// FindOne fetches an organization by ID.
func (s *OrganizationService) FindOne(id string) (*dto.OrganizationDTO, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	out := dto.ToOrganizationDTO(*org)
	return &out, nil
}

// Update applies a partial patch to an organization. Owner only; a slug
// change re-checks uniqueness.
func (s *OrganizationService) Update(id string, input UpdateOrganizationInput, userID string) (*dto.OrganizationDTO, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if org.OwnerID != userID {
		return nil, ErrOnlyOwnerCanUpdateOrg
	}

	if input.Slug != nil && *input.Slug != org.Slug {
		if _, err := s.orgRepo.FindBySlug(*input.Slug); err == nil {
			return nil, ErrSlugTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		changes["name"] = *input.Name
	}
	if input.Slug != nil {
		changes["slug"] = *input.Slug
	}
	if input.Settings != nil {
		changes["settings"] = *input.Settings
	}
	if input.FlActive != nil {
		changes["fl_active"] = *input.FlActive
	}

	if len(changes) == 0 {
		out := dto.ToOrganizationDTO(*org)
		return &out, nil
	}

	updated, err := s.orgRepo.Update(id, changes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	out := dto.ToOrganizationDTO(*updated)
	return &out, nil
}

// Remove soft-deletes an organization. Owner only.
func (s *OrganizationService) Remove(id string, userID string) error {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	if org.OwnerID != userID {
		return ErrOnlyOwnerCanDeleteOrg
	}

	if _, err := s.orgRepo.Update(id, map[string]interface{}{"fl_active": false}); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

// Search searches active organizations by name.
func (s *OrganizationService) Search(name string) ([]dto.OrganizationDTO, error) {
	orgs, err := s.orgRepo.SearchByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to search organizations: %w", err)
	}
	return dto.ToOrganizationDTOs(orgs), nil
}

// GetUserOrganizations lists organizations owned by the user.
func (s *OrganizationService) GetUserOrganizations(userID string) ([]dto.OrganizationDTO, error) {
	orgs, err := s.orgRepo.FindByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return dto.ToOrganizationDTOs(orgs), nil
}
