package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easygametopup/storefront/internal/service/auth"
	"github.com/easygametopup/storefront/pkg/httputil"
)

const (
	ContextUserID    = "auth_user_id"
	ContextUserEmail = "auth_user_email"
	ContextUserRole  = "auth_user_role"
)

// RequireAuth verifies the access token and puts the claimed identity into
// the request context. Claims only gate the request; handlers that need the
// authoritative record re-read it from storage.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.AccessTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := authService.VerifyAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	userID, ok := id.(string)
	return userID, ok && userID != ""
}
