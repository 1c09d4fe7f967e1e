package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/middleware"
	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/internal/service"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/response"
)

type profileChangelogService interface {
	Changelog(ctx context.Context, req dto.ProfileChangelogRequest) (*dto.ProfileChangelogResponse, bool, error)
}

type profileChangeRecorder interface {
	RecordProfileChange(ctx context.Context, req dto.RecordProfileChangeRequest, viewer models.Viewer) (*dto.RecordedChange, error)
}

type changelogExporter interface {
	Export(ctx context.Context, req dto.ProfileChangelogRequest, format, locale string) (*service.ExportFile, error)
}

// ProfileChangelogHandler serves the rule activation history of quality profiles.
type ProfileChangelogHandler struct {
	changelog     profileChangelogService
	recorder      profileChangeRecorder
	exporter      changelogExporter
	defaultLocale string
}

// NewProfileChangelogHandler constructs the handler.
func NewProfileChangelogHandler(changelog profileChangelogService, recorder profileChangeRecorder, exporter changelogExporter, defaultLocale string) *ProfileChangelogHandler {
	return &ProfileChangelogHandler{changelog: changelog, recorder: recorder, exporter: exporter, defaultLocale: defaultLocale}
}

// Changelog godoc
// @Summary Quality profile changelog
// @Description Rule activation events of a profile, newest first. Both dates are inclusive days.
// @Tags QualityProfiles
// @Produce json
// @Param profileKey query string true "Quality profile key"
// @Param since query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param p query int false "Page index, starting at 1"
// @Param ps query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /qualityprofiles/changelog [get]
func (h *ProfileChangelogHandler) Changelog(c *gin.Context) {
	if h.changelog == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ProfileChangelogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	start := time.Now()
	result, cacheHit, err := h.changelog.Changelog(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, start))
}

// Record godoc
// @Summary Record a quality profile change
// @Tags QualityProfiles
// @Accept json
// @Produce json
// @Param payload body dto.RecordProfileChangeRequest true "Change"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /qualityprofiles/changelog [post]
func (h *ProfileChangelogHandler) Record(c *gin.Context) {
	if h.recorder == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.RecordProfileChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	recorded, err := h.recorder.RecordProfileChange(c.Request.Context(), req, viewerFromContext(c, h.defaultLocale))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, recorded)
}

// Export godoc
// @Summary Export a quality profile changelog
// @Tags QualityProfiles
// @Produce text/csv
// @Produce application/pdf
// @Param profileKey query string true "Quality profile key"
// @Param since query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /qualityprofiles/changelog/export [get]
func (h *ProfileChangelogHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ProfileChangelogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	viewer := viewerFromContext(c, h.defaultLocale)
	file, err := h.exporter.Export(c.Request.Context(), req, c.Query("format"), viewer.Locale)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
