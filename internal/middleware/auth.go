package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/constants"
	apierrors "github.com/harukim/task-tracker-api/internal/errors"
	"github.com/harukim/task-tracker-api/internal/services"
)

const contextKeyToken = "bearer_token"

// RequireAuth resolves the bearer token to a principal. Roles and permissions
// are loaded per request; nothing is cached across requests.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authService.Authenticate(token)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, authz.NewPrincipal(user))
		c.Set(contextKeyToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// GetPrincipal retrieves the current principal from context
func GetPrincipal(c *gin.Context) (*authz.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*authz.Principal)
	return principal, ok
}

// GetBearerToken retrieves the presented token from context (used by logout)
func GetBearerToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextKeyToken)
	if !exists {
		return "", false
	}

	token, ok := value.(string)
	return token, ok
}
