package repository

import (
	"github.com/gabrieudev/marcahora/internal/models"
)

// MemberRepository defines the interface for organization member data access
type MemberRepository interface {
	// Create creates a new membership row
	Create(member *models.OrganizationMember) error

	// FindByID finds a member by ID with user and organization preloaded
	FindByID(id string) (*models.OrganizationMember, error)

	// FindByOrganizationAndUser finds the membership row for a user in an
	// organization, active or not
	FindByOrganizationAndUser(organizationID, userID string) (*models.OrganizationMember, error)

	// FindByOrganization lists members of an organization, owners first
	FindByOrganization(organizationID string, includeInactive bool) ([]models.OrganizationMember, error)

	// FindByUser lists a user's memberships with organizations preloaded
	FindByUser(userID string, includeInactive bool) ([]models.OrganizationMember, error)

	// Update applies a partial patch to a member and returns the fresh row
	Update(id string, changes map[string]interface{}) (*models.OrganizationMember, error)

	// CountActiveByOrganization counts active members of an organization
	CountActiveByOrganization(organizationID string) (int64, error)

	// CountActiveByUser counts active memberships held by a user
	CountActiveByUser(userID string) (int64, error)

	// CountActiveNonOwnerAdmins counts active admins that are not the owner
	CountActiveNonOwnerAdmins(organizationID string) (int64, error)

	// FindOwners lists active owner rows of an organization
	FindOwners(organizationID string) ([]models.OrganizationMember, error)

	// TransferOwnership atomically moves is_owner from the current owner's
	// row to the new owner's row and syncs organizations.owner_id
	TransferOwnership(organizationID, currentOwnerUserID, newOwnerUserID string) (*models.OrganizationMember, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its owner membership
	// within a single transaction
	CreateWithOwner(org *models.Organization, member *models.OrganizationMember) error

	// FindByID finds an organization by ID
	FindByID(id string) (*models.Organization, error)

	// FindBySlug finds an organization by its unique slug
	FindBySlug(slug string) (*models.Organization, error)

	// FindByOwner lists organizations owned by a user
	FindByOwner(ownerID string) ([]models.Organization, error)

	// FindAllActive lists active organizations, newest first
	FindAllActive() ([]models.Organization, error)

	// FindAllActiveByMember lists active organizations the user owns and
	// actively belongs to
	FindAllActiveByMember(userID string) ([]models.Organization, error)

	// SearchByName searches active organizations by name substring
	SearchByName(name string) ([]models.Organization, error)

	// Update applies a partial patch to an organization and returns the fresh row
	Update(id string, changes map[string]interface{}) (*models.Organization, error)

	// CountOwnedByUser counts organizations owned by a user
	CountOwnedByUser(userID string) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
