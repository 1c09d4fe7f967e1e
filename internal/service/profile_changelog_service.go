package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

// ChangelogDateTimeLayout formats change dates on the wire.
const ChangelogDateTimeLayout = "2006-01-02T15:04:05-0700"

const profileChangelogCachePrefix = "qprofile:changelog:"

type changelogLoader interface {
	RequireProfile(ctx context.Context, profileKey string) error
	Load(ctx context.Context, q models.ChangelogQuery) (*models.Changelog, error)
	LoadChanges(ctx context.Context, q models.ChangelogQuery) (*models.Changelog, error)
}

// ProfileChangelogConfig tunes paging, time zone and caching of profile changelogs.
type ProfileChangelogConfig struct {
	Location        *time.Location
	DefaultPageSize int
	MaxPageSize     int
	CacheTTL        time.Duration
}

// ProfileChangelogService serves the rule activation history of quality profiles.
type ProfileChangelogService struct {
	loader    changelogLoader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ProfileChangelogConfig
}

// ProfileChangelogServiceParams groups constructor dependencies.
type ProfileChangelogServiceParams struct {
	Loader    changelogLoader
	Cache     *CacheService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ProfileChangelogConfig
}

// NewProfileChangelogService constructs a ProfileChangelogService with sane defaults.
func NewProfileChangelogService(params ProfileChangelogServiceParams) *ProfileChangelogService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 500
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileChangelogService{
		loader:    params.Loader,
		cache:     params.Cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Query validates req and converts it to a ChangelogQuery with paging applied.
func (s *ProfileChangelogService) Query(req dto.ProfileChangelogRequest) (models.ChangelogQuery, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ChangelogQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid changelog request")
	}
	if req.PageSize > s.cfg.MaxPageSize {
		return models.ChangelogQuery{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page size must not exceed %d", s.cfg.MaxPageSize))
	}
	q, err := BuildChangelogQuery(req.ProfileKey, req.Since, req.To, s.cfg.Location)
	if err != nil {
		return models.ChangelogQuery{}, err
	}
	q.Page = req.Page
	if q.Page <= 0 {
		q.Page = 1
	}
	q.PageSize = req.PageSize
	if q.PageSize <= 0 {
		q.PageSize = s.cfg.DefaultPageSize
	}
	return q, nil
}

// Changelog returns one page of a profile changelog and reports whether it came from cache.
func (s *ProfileChangelogService) Changelog(ctx context.Context, req dto.ProfileChangelogRequest) (*dto.ProfileChangelogResponse, bool, error) {
	q, err := s.Query(req)
	if err != nil {
		return nil, false, err
	}

	// Pages of a deleted profile may outlive it in the cache.
	if err := s.loader.RequireProfile(ctx, q.EntityRef); err != nil {
		return nil, false, err
	}

	cacheKey := profileChangelogCacheKey(q)
	var cached dto.ProfileChangelogResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	changelog, err := s.loader.LoadChanges(ctx, q)
	if err != nil {
		return nil, false, err
	}
	resp := s.present(changelog, q)
	_ = s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Changes returns the loaded changes of every page for the request filters, newest first.
func (s *ProfileChangelogService) Changes(ctx context.Context, req dto.ProfileChangelogRequest) ([]*models.Change, error) {
	q, err := s.Query(req)
	if err != nil {
		return nil, err
	}
	q.Page, q.PageSize = 1, 0
	changelog, err := s.loader.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	return changelog.Changes, nil
}

// Invalidate drops the cached pages of one profile.
func (s *ProfileChangelogService) Invalidate(ctx context.Context, profileKey string) error {
	return s.cache.Invalidate(ctx, profileChangelogCachePrefix+escapeGlob(profileKey)+":*")
}

func (s *ProfileChangelogService) present(changelog *models.Changelog, q models.ChangelogQuery) *dto.ProfileChangelogResponse {
	entries := make([]dto.ProfileChangelogEntry, 0, len(changelog.Changes))
	for _, change := range changelog.Changes {
		entries = append(entries, s.entry(change))
	}
	return &dto.ProfileChangelogResponse{
		Paging:    models.Pagination{PageIndex: q.Page, PageSize: q.PageSize, Total: changelog.Total},
		Changelog: entries,
	}
}

func (s *ProfileChangelogService) entry(change *models.Change) dto.ProfileChangelogEntry {
	entry := dto.ProfileChangelogEntry{
		Date:        change.Time().In(s.cfg.Location).Format(ChangelogDateTimeLayout),
		Action:      string(change.Type),
		Severity:    change.Severity,
		Inheritance: change.Inheritance,
		RuleKey:     change.RuleKey,
		RuleName:    change.RuleName,
	}
	if change.HasActor() {
		entry.AuthorLogin = change.Actor
		entry.AuthorName = change.ActorDisplayName
	}
	if change.Params.Len() > 0 {
		params := dto.NewOrderedParams()
		change.Params.Each(func(name string, diff models.Diff) {
			params.Set(name, diff.New.String())
		})
		entry.Params = params
	}
	return entry
}

func profileChangelogCacheKey(q models.ChangelogQuery) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", profileChangelogCachePrefix, q.EntityRef, bound(q.FromIncluded), bound(q.ToExcluded), q.Page, q.PageSize)
}

func bound(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// escapeGlob quotes the Redis glob metacharacters of s so it only matches itself.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '*', '?', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
