package middleware

import (
	"github.com/gabrieudev/marcahora/internal/constants"
	apierrors "github.com/gabrieudev/marcahora/internal/errors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
