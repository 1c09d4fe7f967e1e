package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/response"
)

// RequireRoles lets the request through when the authenticated viewer holds one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient privileges"))
			return
		}
		c.Next()
	}
}
