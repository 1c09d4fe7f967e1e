package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/internal/service"
	"github.com/Nandakumartc/sonarqube/pkg/logger"
)

func newTokens(t *testing.T) (*service.TokenService, string) {
	t.Helper()
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Expiry: time.Hour})
	token, _, err := tokens.GenerateToken(models.User{Login: "marcel", Name: "Marcel"}, models.RoleUser, "")
	require.NoError(t, err)
	return tokens, token
}

func serve(router *gin.Engine, path, authorization string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, token := newTokens(t)

	router := gin.New()
	router.Use(JWT(tokens))
	router.GET("/", func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		assert.Equal(t, "marcel", c.GetString(logger.ViewerLoginKey))
		c.String(http.StatusOK, claims.Login)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/", "Bearer not-a-token").Code)

	ok := serve(router, "/", "Bearer "+token)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "marcel", ok.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, token := newTokens(t)

	router := gin.New()
	router.Use(OptionalJWT(tokens))
	router.GET("/", func(c *gin.Context) {
		_, exists := c.Get(ContextUserKey)
		if exists {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serve(router, "/", "").Body.String())
	assert.Equal(t, "anonymous", serve(router, "/", "Bearer broken").Body.String())
	assert.Equal(t, "user", serve(router, "/", "Bearer "+token).Body.String())
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret"})
	userToken, _, err := tokens.GenerateToken(models.User{Login: "simon"}, models.RoleUser, "")
	require.NoError(t, err)
	adminToken, _, err := tokens.GenerateToken(models.User{Login: "marcel"}, models.RoleAdmin, "")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/anonymous", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/admin", JWT(tokens), RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/anonymous", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "/admin", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "/admin", "Bearer "+adminToken).Code)
}

func TestLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Locale([]string{"en", "fr"}))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, LocaleFrom(c, "xx"))
	})

	assert.Equal(t, "en", serve(router, "/", "").Body.String())
	assert.Equal(t, "fr", serve(router, "/", "", "Accept-Language", "fr-CA,fr;q=0.9,en;q=0.5").Body.String())
	assert.Equal(t, "en", serve(router, "/", "", "Accept-Language", "de-DE").Body.String())
	assert.Equal(t, "fr", serve(router, "/?locale=fr", "", "Accept-Language", "en").Body.String())
}

func TestLocaleFromFallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "en", LocaleFrom(c, "en"))
}

func TestSetCacheHit(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	SetCacheHit(c, true)
	hit, ok := CacheHit(c)
	assert.True(t, ok)
	assert.True(t, hit)
	assert.Equal(t, "HIT", recorder.Header().Get(CacheHeader))
	assert.Equal(t, true, ExtractMeta(c)[cacheHitKey])
}

func TestMetricsSkipsConfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/changelog", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, "/metrics", "")
	serve(router, "/changelog", "")
	serve(router, "/nowhere", "")

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
