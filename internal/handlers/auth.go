package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/dto"
	apierrors "github.com/gabrieudev/marcahora/internal/errors"
	"github.com/gabrieudev/marcahora/internal/middleware"
	"github.com/gabrieudev/marcahora/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Name     string `json:"name" binding:"required,min=2,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Falha ao salvar a sessão")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Falha ao encerrar a sessão")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sessão encerrada com sucesso",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("A senha deve ter pelo menos %d caracteres", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
