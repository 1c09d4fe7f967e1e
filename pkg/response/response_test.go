package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/middleware/requestid"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestJSONWritesDataAndMeta(t *testing.T) {
	rec, envelope := serve(t, func(c *gin.Context) {
		JSON(c, http.StatusOK, gin.H{"total": 3}, map[string]interface{}{"cache_hit": false})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, map[string]interface{}{"total": float64(3)}, envelope.Data)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestErrorEchoesRequestID(t *testing.T) {
	rec, envelope := serve(t, func(c *gin.Context) {
		Error(c, appErrors.Clone(appErrors.ErrNotFound, "quality profile missing"))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "req-1", envelope.Meta["request_id"])
}

func TestAbortHidesUnknownErrors(t *testing.T) {
	reached := false
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { Abort(c, errors.New("pq: connection refused")) }, func(c *gin.Context) { reached = true })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.False(t, reached)
}
