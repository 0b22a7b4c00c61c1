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
	ErrOrganizationNotFound    = errors.New("Organização não encontrada")
	ErrNotOrganizationMember   = errors.New("Você não é membro desta organização")
	ErrOnlyAdminsCanAddMembers = errors.New("Apenas administradores podem adicionar membros")
	ErrTargetUserNotFound      = errors.New("Usuário não encontrado")
	ErrAlreadyMember           = errors.New("Usuário já é membro desta organização")
	ErrMemberNotFound          = errors.New("Membro não encontrado")
	ErrMembershipNotFound      = errors.New("Você não é membro desta organização")
	ErrInvalidRole             = errors.New("Papel de membro inválido")
	ErrMemberLimitReached      = errors.New("Limite de membros atingido (máximo 100)")
	ErrCannotCreateSecondOwner = errors.New("Não é possível criar outro owner. Apenas um owner por organização.")
	ErrCannotUpdateMember      = errors.New("Sem permissão para atualizar este membro")
	ErrOnlyOwnPreferences      = errors.New("Você só pode atualizar suas preferências")
	ErrOwnerMustBeAdmin        = errors.New("O owner deve sempre ter role de admin")
	ErrCannotChangeOwnerFlag   = errors.New("Não é possível alterar o status de owner desta forma")
	ErrCannotRemoveMember      = errors.New("Sem permissão para remover este membro")
	ErrOwnerCannotBeRemoved    = errors.New("O owner não pode ser removido. Transfira a propriedade primeiro.")
	ErrCannotRemoveLastAdmin   = errors.New("Não é possível remover o último admin da organização")
	ErrOnlyOwnerCanTransfer    = errors.New("Apenas o owner atual pode transferir a propriedade")
	ErrNewOwnerNotActiveMember = errors.New("Novo proprietário não encontrado como membro ativo da organização")
	ErrAlreadyOwner            = errors.New("Você já é o proprietário")
	ErrTransferTargetNotFound  = errors.New("Membro para transferência não encontrado")
	ErrOwnerCannotLeave        = errors.New("O owner não pode sair da organização. Transfira a propriedade primeiro.")
	ErrCannotLeaveAsLastAdmin  = errors.New("Não é possível sair como o último admin da organização")
)

// MemberService mediates every mutation of organization membership state,
// enforcing role-based authorization, the single-owner invariant, and the
// last-admin protection before delegating to the repositories.
type MemberService struct {
	memberRepo repository.MemberRepository
	orgRepo    repository.OrganizationRepository
	userRepo   repository.UserRepository
}

// NewMemberService creates a new MemberService.
func NewMemberService(memberRepo repository.MemberRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		userRepo:   userRepo,
	}
}

// AddMemberInput represents parameters to add or reactivate a member.
type AddMemberInput struct {
	UserIDOrEmail string
	Role          models.OrganizationRole
	Preferences   datatypes.JSONMap
}

// UpdateMemberInput is a partial patch. Pointer fields distinguish "absent"
// from zero values, so a patch that explicitly carries is_owner or
// fl_active=false can be told apart from one that omits them.
type UpdateMemberInput struct {
	Role        *models.OrganizationRole
	Preferences *datatypes.JSONMap
	FlActive    *bool
	IsOwner     *bool
}

// TransferOwnershipInput identifies the member receiving ownership.
type TransferOwnershipInput struct {
	NewOwnerUserID string
}

// resolveUser looks the target user up by email when the identifier contains
// an "@", otherwise by user ID.
func (s *MemberService) resolveUser(identifier string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindByEmail(identifier)
	} else {
		user, err = s.userRepo.FindByID(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// requireActiveMember loads the requesting user's active membership.
func (s *MemberService) requireActiveMember(organizationID, userID string) (*models.OrganizationMember, error) {
	member, err := s.memberRepo.FindByOrganizationAndUser(organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if !member.FlActive {
		return nil, ErrNotOrganizationMember
	}
	return member, nil
}

// AddMember adds a user to the organization, reactivating a soft-deleted
// membership when one exists for the same user.
func (s *MemberService) AddMember(organizationID string, input AddMemberInput, currentUserID string) (*dto.MemberDTO, error) {
	org, err := s.orgRepo.FindByID(organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	current, err := s.requireActiveMember(organizationID, currentUserID)
	if err != nil {
		return nil, err
	}
	if !current.IsAdminOrOwner() {
		return nil, ErrOnlyAdminsCanAddMembers
	}

	if input.Role != "" && !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.resolveUser(input.UserIDOrEmail)
	if err != nil {
		return nil, err
	}

	existing, err := s.memberRepo.FindByOrganizationAndUser(organizationID, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if existing != nil {
		if existing.FlActive {
			return nil, ErrAlreadyMember
		}
		// Soft-deleted row for the same (org, user) pair: reactivate it,
		// keeping the original row ID.
		changes := map[string]interface{}{
			"fl_active": true,
			"role":      existing.Role,
		}
		if input.Role != "" {
			changes["role"] = input.Role
		}
		if input.Preferences != nil {
			changes["preferences"] = input.Preferences
		}

		updated, err := s.memberRepo.Update(existing.ID, changes)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to reactivate member: %w", err)
		}

		out := dto.ToMemberWithUserDTO(*updated, *user)
		return &out, nil
	}

	count, err := s.memberRepo.CountActiveByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if count >= constants.MaxOrganizationMembers {
		return nil, ErrMemberLimitReached
	}

	// An admin role on add is only accepted for the recorded owner, so this
	// path can never mint an owner-equivalent member.
	if input.Role == models.RoleAdmin && org.OwnerID != user.ID {
		return nil, ErrCannotCreateSecondOwner
	}

	role := input.Role
	if role == "" {
		role = models.RoleMembro
	}
	preferences := input.Preferences
	if preferences == nil {
		preferences = datatypes.JSONMap{}
	}

	member := &models.OrganizationMember{
		OrganizationID: organizationID,
		UserID:         user.ID,
		Role:           role,
		Preferences:    preferences,
		FlActive:       true,
	}

	if err := s.memberRepo.Create(member); err != nil {
		// Two concurrent adds for the same user race past the lookup above;
		// the (organization_id, user_id) unique index decides the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	out := dto.ToMemberWithUserDTO(*member, *user)
	return &out, nil
}

// FindAll lists an organization's members with user summaries.
func (s *MemberService) FindAll(organizationID string, includeInactive bool) ([]dto.MemberDTO, error) {
	if _, err := s.orgRepo.FindByID(organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.memberRepo.FindByOrganization(organizationID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	out := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		out[i] = dto.ToMemberWithUserDTO(member, member.User)
	}
	return out, nil
}

// FindOne fetches a single member of the organization.
func (s *MemberService) FindOne(organizationID, memberID string) (*dto.MemberDTO, error) {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member.OrganizationID != organizationID {
		return nil, ErrMemberNotFound
	}

	out := dto.ToMemberWithUserDTO(*member, member.User)
	return &out, nil
}

// GetMyMemberships lists the user's memberships with organization summaries.
func (s *MemberService) GetMyMemberships(userID string, includeInactive bool) ([]dto.MemberDTO, error) {
	memberships, err := s.memberRepo.FindByUser(userID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	out := make([]dto.MemberDTO, len(memberships))
	for i, membership := range memberships {
		// Should not happen while the foreign key holds; defensive.
		if membership.Organization.ID == "" {
			return nil, ErrOrganizationNotFound
		}
		out[i] = dto.ToMemberWithOrganizationDTO(membership, membership.Organization)
	}
	return out, nil
}

// Update applies a partial patch to a member. Ownership can never change
// through this path; owners keep role admin; non-admin members may only touch
// their own preferences.
func (s *MemberService) Update(organizationID, memberID string, input UpdateMemberInput, currentUserID string) (*dto.MemberDTO, error) {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member.OrganizationID != organizationID {
		return nil, ErrMemberNotFound
	}

	current, err := s.requireActiveMember(organizationID, currentUserID)
	if err != nil {
		return nil, err
	}

	isSelf := member.UserID == currentUserID
	isAdminOrOwner := current.IsAdminOrOwner()

	if !isSelf && !isAdminOrOwner {
		return nil, ErrCannotUpdateMember
	}

	if isSelf && !isAdminOrOwner {
		if input.Role != nil || input.FlActive != nil || input.IsOwner != nil {
			return nil, ErrOnlyOwnPreferences
		}
	}

	if input.Role != nil && !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	if input.Role != nil && member.IsOwner && *input.Role != models.RoleAdmin {
		return nil, ErrOwnerMustBeAdmin
	}

	// Ownership only moves through TransferOwnership.
	if input.IsOwner != nil {
		return nil, ErrCannotChangeOwnerFlag
	}

	changes := map[string]interface{}{}
	if input.Role != nil {
		changes["role"] = *input.Role
	}
	if input.Preferences != nil {
		changes["preferences"] = *input.Preferences
	}
	if input.FlActive != nil {
		changes["fl_active"] = *input.FlActive
	}

	if len(changes) == 0 {
		out := dto.ToMemberWithUserDTO(*member, member.User)
		return &out, nil
	}

	updated, err := s.memberRepo.Update(memberID, changes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	out := dto.ToMemberWithUserDTO(*updated, updated.User)
	return &out, nil
}

// Remove soft-deletes a member. The owner must transfer ownership first, and
// an admin removing another admin cannot take out the last non-owner admin.
// An admin removing themselves through this path skips the last-admin count;
// LeaveOrganization is the one that applies it to self-removal.
func (s *MemberService) Remove(organizationID, memberID, currentUserID string) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if member.OrganizationID != organizationID {
		return ErrMemberNotFound
	}

	current, err := s.requireActiveMember(organizationID, currentUserID)
	if err != nil {
		return err
	}

	isSelf := member.UserID == currentUserID
	isAdminOrOwner := current.IsAdminOrOwner()

	if !isSelf && !isAdminOrOwner {
		return ErrCannotRemoveMember
	}

	if member.IsOwner {
		return ErrOwnerCannotBeRemoved
	}

	if member.Role == models.RoleAdmin && isAdminOrOwner && !isSelf {
		admins, err := s.memberRepo.CountActiveNonOwnerAdmins(organizationID)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrCannotRemoveLastAdmin
		}
	}

	if _, err := s.memberRepo.Update(member.ID, map[string]interface{}{"fl_active": false}); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// LeaveOrganization soft-deletes the caller's own membership.
func (s *MemberService) LeaveOrganization(organizationID, userID string) error {
	member, err := s.memberRepo.FindByOrganizationAndUser(organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}

	if member.IsOwner {
		return ErrOwnerCannotLeave
	}

	if member.Role == models.RoleAdmin {
		admins, err := s.memberRepo.CountActiveNonOwnerAdmins(organizationID)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrCannotLeaveAsLastAdmin
		}
	}

	if _, err := s.memberRepo.Update(member.ID, map[string]interface{}{"fl_active": false}); err != nil {
		return fmt.Errorf("failed to leave organization: %w", err)
	}
	return nil
}

// TransferOwnership moves ownership to another active member. The three
// affected rows change inside one transaction in the repository, keeping
// exactly one owner observable at all times.
func (s *MemberService) TransferOwnership(organizationID string, input TransferOwnershipInput, currentUserID string) (*dto.MemberDTO, error) {
	current, err := s.memberRepo.FindByOrganizationAndUser(organizationID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOnlyOwnerCanTransfer
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if !current.IsOwner {
		return nil, ErrOnlyOwnerCanTransfer
	}

	newOwner, err := s.memberRepo.FindByOrganizationAndUser(organizationID, input.NewOwnerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewOwnerNotActiveMember
		}
		return nil, fmt.Errorf("failed to load new owner: %w", err)
	}
	if !newOwner.FlActive {
		return nil, ErrNewOwnerNotActiveMember
	}

	if newOwner.UserID == currentUserID {
		return nil, ErrAlreadyOwner
	}

	updated, err := s.memberRepo.TransferOwnership(organizationID, currentUserID, input.NewOwnerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferTargetNotFound
		}
		return nil, fmt.Errorf("failed to transfer ownership: %w", err)
	}

	out := dto.ToMemberWithUserDTO(*updated, updated.User)
	return &out, nil
}
