package repository

import (
	"errors"
	"fmt"

	"github.com/gabrieudev/marcahora/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateOrganization is returned when creating the organization fails inside the creation transaction.
	ErrCreateOrganization = errors.New("organization repository: create organization failed")
	// ErrCreateOwnerMember is returned when creating the owner membership fails inside the creation transaction.
	ErrCreateOwnerMember = errors.New("organization repository: create owner membership failed")
)

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates the organization and its owner membership atomically,
// so the organization is never observable without an owner row.
func (r *GormOrganizationRepository) CreateWithOwner(org *models.Organization, member *models.OrganizationMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		member.OrganizationID = org.ID
		member.UserID = org.OwnerID

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOwnerMember, err)
		}

		return nil
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by slug
func (r *GormOrganizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByOwner lists organizations owned by a user
func (r *GormOrganizationRepository) FindByOwner(ownerID string) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.Where("owner_id = ?", ownerID).Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindAllActive lists active organizations, newest first
func (r *GormOrganizationRepository) FindAllActive() ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.Where("fl_active = ?", true).
		Order("created_at DESC").
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindAllActiveByMember lists active organizations the user owns and actively belongs to
func (r *GormOrganizationRepository) FindAllActiveByMember(userID string) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.
		Joins("INNER JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organizations.fl_active = ?", true).
		Where("organization_members.fl_active = ?", true).
		Where("organizations.owner_id = ?", userID).
		Where("organization_members.user_id = ?", userID).
		Order("organizations.created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// SearchByName searches active organizations by name substring
func (r *GormOrganizationRepository) SearchByName(name string) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Where("fl_active = ?", true).
		Where("name LIKE ?", "%"+name+"%").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update applies a partial patch to an organization and returns the fresh row
func (r *GormOrganizationRepository) Update(id string, changes map[string]interface{}) (*models.Organization, error) {
	result := r.db.Model(&models.Organization{}).
		Where("id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}

// CountOwnedByUser counts organizations owned by a user
func (r *GormOrganizationRepository) CountOwnedByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Organization{}).
		Where("owner_id = ?", userID).
		Count(&count).Error
	return count, err
}
