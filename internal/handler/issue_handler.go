package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/middleware"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/response"
)

type issueShowService interface {
	Show(ctx context.Context, issueKey string, viewer models.Viewer) (*dto.IssueShowResponse, error)
}

type issueChangeRecorder interface {
	RecordIssueChange(ctx context.Context, req dto.RecordIssueChangeRequest, viewer models.Viewer) (*dto.RecordedChange, error)
	AddIssueComment(ctx context.Context, issueKey, markdown string, viewer models.Viewer) (*dto.RecordedChange, error)
}

// IssueHandler exposes issue detail and issue history endpoints.
type IssueHandler struct {
	show          issueShowService
	recorder      issueChangeRecorder
	defaultLocale string
}

// NewIssueHandler constructs the handler.
func NewIssueHandler(show issueShowService, recorder issueChangeRecorder, defaultLocale string) *IssueHandler {
	return &IssueHandler{show: show, recorder: recorder, defaultLocale: defaultLocale}
}

// Show godoc
// @Summary Issue detail
// @Description Issue fields, workflow options, comments and changelog. The first changelog entry marks the creation.
// @Tags Issues
// @Produce json
// @Param key query string true "Issue key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/show [get]
func (h *IssueHandler) Show(c *gin.Context) {
	if h.show == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "key is required"))
		return
	}
	start := time.Now()
	result, err := h.show.Show(c.Request.Context(), key, viewerFromContext(c, h.defaultLocale))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, start))
}

// RecordChange godoc
// @Summary Record issue field changes
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body dto.RecordIssueChangeRequest true "Field diffs"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /issues/changes [post]
func (h *IssueHandler) RecordChange(c *gin.Context) {
	if h.recorder == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.RecordIssueChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	recorded, err := h.recorder.RecordIssueChange(c.Request.Context(), req, viewerFromContext(c, h.defaultLocale))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, recorded)
}

// AddComment godoc
// @Summary Comment an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body dto.AddIssueCommentRequest true "Markdown comment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /issues/comments [post]
func (h *IssueHandler) AddComment(c *gin.Context) {
	if h.recorder == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.AddIssueCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	recorded, err := h.recorder.AddIssueComment(c.Request.Context(), req.IssueKey, req.Text, viewerFromContext(c, h.defaultLocale))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, recorded)
}
