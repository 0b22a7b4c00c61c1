package repository

import (
	"errors"
	"fmt"

	"github.com/gabrieudev/marcahora/internal/models"
	"gorm.io/gorm"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

var (
	// ErrClearCurrentOwner is returned when clearing the current owner's flag fails inside the transfer transaction.
	ErrClearCurrentOwner = errors.New("member repository: clear current owner failed")
	// ErrPromoteNewOwner is returned when promoting the new owner fails inside the transfer transaction.
	ErrPromoteNewOwner = errors.New("member repository: promote new owner failed")
	// ErrSyncOrganizationOwner is returned when updating organizations.owner_id fails inside the transfer transaction.
	ErrSyncOrganizationOwner = errors.New("member repository: sync organization owner failed")
)

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create creates a new membership row
func (r *GormMemberRepository) Create(member *models.OrganizationMember) error {
	return r.db.Create(member).Error
}

// FindByID finds a member by ID with user and organization preloaded
func (r *GormMemberRepository) FindByID(id string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.Preload("User").Preload("Organization").
		Where("id = ?", id).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByOrganizationAndUser finds the membership row for a user in an organization
func (r *GormMemberRepository) FindByOrganizationAndUser(organizationID, userID string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.Preload("User").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByOrganization lists members of an organization, owners first then by join date
func (r *GormMemberRepository) FindByOrganization(organizationID string, includeInactive bool) ([]models.OrganizationMember, error) {
	query := r.db.Preload("User").
		Where("organization_id = ?", organizationID).
		Order("is_owner DESC").
		Order("joined_at ASC")

	if !includeInactive {
		query = query.Where("fl_active = ?", true)
	}

	var members []models.OrganizationMember
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindByUser lists a user's memberships with organizations preloaded
func (r *GormMemberRepository) FindByUser(userID string, includeInactive bool) ([]models.OrganizationMember, error) {
	query := r.db.Preload("Organization").
		Where("user_id = ?", userID)

	if !includeInactive {
		query = query.Where("fl_active = ?", true)
	}

	var memberships []models.OrganizationMember
	if err := query.Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// Update applies a partial patch to a member and returns the fresh row.
// Patches are maps so that false booleans (fl_active, is_owner) persist.
func (r *GormMemberRepository) Update(id string, changes map[string]interface{}) (*models.OrganizationMember, error) {
	result := r.db.Model(&models.OrganizationMember{}).
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

// CountActiveByOrganization counts active members of an organization
func (r *GormMemberRepository) CountActiveByOrganization(organizationID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND fl_active = ?", organizationID, true).
		Count(&count).Error
	return count, err
}

// CountActiveByUser counts active memberships held by a user
func (r *GormMemberRepository) CountActiveByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMember{}).
		Where("user_id = ? AND fl_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

// CountActiveNonOwnerAdmins counts active admins of an organization excluding the owner
func (r *GormMemberRepository) CountActiveNonOwnerAdmins(organizationID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND role = ? AND fl_active = ? AND is_owner = ?",
			organizationID, models.RoleAdmin, true, false).
		Count(&count).Error
	return count, err
}

// FindOwners lists active owner rows of an organization
func (r *GormMemberRepository) FindOwners(organizationID string) ([]models.OrganizationMember, error) {
	var owners []models.OrganizationMember
	err := r.db.Preload("User").
		Where("organization_id = ? AND is_owner = ? AND fl_active = ?", organizationID, true, true).
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

// TransferOwnership moves ownership between two members atomically. The
// current owner's flag, the new owner's flag and role, and the
// organizations.owner_id mirror all change in one transaction, so a
// concurrent reader never observes zero or two owners.
func (r *GormMemberRepository) TransferOwnership(organizationID, currentOwnerUserID, newOwnerUserID string) (*models.OrganizationMember, error) {
	var updated models.OrganizationMember

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", organizationID, currentOwnerUserID).
			Update("is_owner", false).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrClearCurrentOwner, err)
		}

		result := tx.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", organizationID, newOwnerUserID).
			Updates(map[string]interface{}{
				"is_owner": true,
				"role":     models.RoleAdmin,
			})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrPromoteNewOwner, result.Error)
		}
		if result.RowsAffected == 0 {
			// Rolls back the cleared flag on the current owner.
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&models.Organization{}).
			Where("id = ?", organizationID).
			Update("owner_id", newOwnerUserID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrSyncOrganizationOwner, err)
		}

		return tx.Preload("User").
			Where("organization_id = ? AND user_id = ?", organizationID, newOwnerUserID).
			First(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
