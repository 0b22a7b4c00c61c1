package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/models"
	"github.com/gabrieudev/marcahora/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("E-mail já cadastrado")
	ErrInvalidCredentials   = errors.New("E-mail ou senha inválidos")
	ErrPasswordTooShort     = errors.New("Senha muito curta")
	ErrUserNotFound         = errors.New("Usuário não encontrado")
	ErrFailedToHashPassword = errors.New("falha ao gerar hash da senha")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates a new user account.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, fmt.Errorf("e-mail é obrigatório")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastSigninAt = &now

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
