package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nandakumartc/sonarqube/internal/middleware"
	"github.com/Nandakumartc/sonarqube/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// viewerFromContext returns the request viewer. The negotiated locale wins over the token's
// locale, which wins over fallback.
func viewerFromContext(c *gin.Context, fallback string) models.Viewer {
	claims := claimsFromContext(c)
	locale := c.GetString(middleware.ContextLocaleKey)
	if locale == "" && claims != nil && claims.Locale != "" {
		locale = claims.Locale
	}
	if locale == "" {
		locale = fallback
	}
	return models.ViewerFromClaims(claims, locale)
}
