package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

type profileChangeWriter interface {
	Insert(ctx context.Context, row *models.ProfileChangeRow) error
}

type issueChangeWriter interface {
	Insert(ctx context.Context, row *models.IssueChangeRow) error
}

type issueReader interface {
	FindByKey(ctx context.Context, key string) (*models.Issue, error)
}

type changelogInvalidator interface {
	Invalidate(ctx context.Context, profileKey string) error
}

// ChangeRecorder appends changes to profile and issue changelogs. Recorded rows are never updated.
type ChangeRecorder struct {
	profiles       profileResolver
	profileChanges profileChangeWriter
	issues         issueReader
	issueChanges   issueChangeWriter
	invalidator    changelogInvalidator
	metrics        *MetricsService
	validator      *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
	newID          func() string
}

// ChangeRecorderParams groups constructor dependencies.
type ChangeRecorderParams struct {
	Profiles       profileResolver
	ProfileChanges profileChangeWriter
	Issues         issueReader
	IssueChanges   issueChangeWriter
	Invalidator    changelogInvalidator
	Metrics        *MetricsService
	Validator      *validator.Validate
	Logger         *zap.Logger
}

// NewChangeRecorder constructs a ChangeRecorder.
func NewChangeRecorder(params ChangeRecorderParams) *ChangeRecorder {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRecorder{
		profiles:       params.Profiles,
		profileChanges: params.ProfileChanges,
		issues:         params.Issues,
		issueChanges:   params.IssueChanges,
		invalidator:    params.Invalidator,
		metrics:        params.Metrics,
		validator:      validate,
		logger:         logger,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// RecordProfileChange appends a rule activation event. Parameter diffs that do not change the
// value are dropped; an UPDATED event left without any change is rejected.
func (r *ChangeRecorder) RecordProfileChange(ctx context.Context, req dto.RecordProfileChangeRequest, viewer models.Viewer) (*dto.RecordedChange, error) {
	if err := r.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile change payload")
	}
	if _, err := r.profiles.GetByKey(ctx, req.ProfileKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("quality profile %s not found", req.ProfileKey))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quality profile")
	}

	params := models.NewDiffMap()
	for _, param := range req.Params {
		if _, dup := params.Get(param.Name); dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s is listed twice", param.Name))
		}
		diff := models.Diff{Old: param.Old, New: param.New}
		if diff.IsNoOp() {
			continue
		}
		if err := params.Set(param.Name, diff); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parameter diff")
		}
	}
	action := models.ChangeType(req.Action)
	if action == models.ChangeTypeUpdated && params.Len() == 0 && req.Severity == "" && req.Inheritance == "" {
		return nil, appErrors.ErrNoOpChange
	}

	data := models.ProfileChangeData{Severity: req.Severity, Inheritance: req.Inheritance, RuleKey: req.RuleKey}
	params.Each(func(name string, diff models.Diff) {
		data.Params = append(data.Params, models.ParamChange{Name: name, Old: diff.Old, New: diff.New})
	})
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode change data")
	}

	createdAt := r.now()
	row := &models.ProfileChangeRow{
		Key:        r.newID(),
		ProfileKey: req.ProfileKey,
		ChangeType: string(action),
		UserLogin:  optionalLogin(viewer),
		Data:       raw,
		CreatedAt:  createdAt.UnixMilli(),
	}
	if err := r.profileChanges.Insert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record profile change")
	}
	r.metrics.RecordChange("profile", string(action))
	if r.invalidator != nil {
		if err := r.invalidator.Invalidate(ctx, req.ProfileKey); err != nil {
			r.logger.Warn("profile changelog cache not invalidated", zap.String("profile", req.ProfileKey), zap.Error(err))
		}
	}
	r.logger.Info("profile change recorded",
		zap.String("profile", req.ProfileKey),
		zap.String("change", row.Key),
		zap.String("action", row.ChangeType),
		zap.String("rule", req.RuleKey),
	)
	return recorded(row.Key, row.ChangeType, createdAt), nil
}

// RecordIssueChange appends field diffs to an issue. Empty values count as null. No-op diffs are
// dropped; a request made only of no-ops is rejected, and so is a field listed twice.
func (r *ChangeRecorder) RecordIssueChange(ctx context.Context, req dto.RecordIssueChangeRequest, viewer models.Viewer) (*dto.RecordedChange, error) {
	if err := r.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue change payload")
	}
	if err := r.requireIssue(ctx, req.IssueKey); err != nil {
		return nil, err
	}

	diffs := models.NewDiffMap()
	seen := make(map[string]struct{}, len(req.Diffs))
	for _, change := range req.Diffs {
		if _, dup := seen[change.Field]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %s is listed twice", change.Field))
		}
		seen[change.Field] = struct{}{}
		diff := models.Diff{Old: change.Old, New: change.New}.Normalized()
		if diff.IsNoOp() {
			continue
		}
		if err := diffs.Set(change.Field, diff); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid field diff")
		}
	}
	if diffs.Len() == 0 {
		return nil, appErrors.ErrNoOpChange
	}
	encoded, err := diffs.Encode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "field diff cannot be stored")
	}

	createdAt := r.now()
	row := &models.IssueChangeRow{
		Key:        r.newID(),
		IssueKey:   req.IssueKey,
		UserLogin:  optionalLogin(viewer),
		ChangeType: models.IssueChangeTypeDiff,
		Data:       encoded,
		CreatedAt:  createdAt.UnixMilli(),
		UpdatedAt:  createdAt.UnixMilli(),
	}
	if err := r.issueChanges.Insert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record issue change")
	}
	r.metrics.RecordChange("issue", string(models.ChangeTypeIssueDiff))
	r.logger.Info("issue change recorded", zap.String("issue", req.IssueKey), zap.String("change", row.Key), zap.Strings("fields", diffs.Names()))
	return recorded(row.Key, string(models.ChangeTypeIssueDiff), createdAt), nil
}

// AddIssueComment stores a markdown comment written by the viewer.
func (r *ChangeRecorder) AddIssueComment(ctx context.Context, issueKey, markdown string, viewer models.Viewer) (*dto.RecordedChange, error) {
	if !viewer.IsLoggedIn() {
		return nil, appErrors.ErrUnauthorized
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment text is required")
	}
	if err := r.requireIssue(ctx, issueKey); err != nil {
		return nil, err
	}

	createdAt := r.now()
	row := &models.IssueChangeRow{
		Key:        r.newID(),
		IssueKey:   issueKey,
		UserLogin:  optionalLogin(viewer),
		ChangeType: models.IssueChangeTypeComment,
		Data:       markdown,
		CreatedAt:  createdAt.UnixMilli(),
		UpdatedAt:  createdAt.UnixMilli(),
	}
	if err := r.issueChanges.Insert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}
	r.metrics.RecordChange("issue", "COMMENT")
	return recorded(row.Key, "COMMENT", createdAt), nil
}

func (r *ChangeRecorder) requireIssue(ctx context.Context, key string) error {
	if _, err := r.issues.FindByKey(ctx, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("issue %s not found", key))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	return nil
}

func optionalLogin(viewer models.Viewer) *string {
	if !viewer.IsLoggedIn() {
		return nil
	}
	login := viewer.Login
	return &login
}

func recorded(key, action string, createdAt time.Time) *dto.RecordedChange {
	return &dto.RecordedChange{Key: key, Action: action, CreatedAt: createdAt.UTC().Format(ChangelogDateTimeLayout)}
}
