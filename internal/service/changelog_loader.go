package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

type profileResolver interface {
	GetByKey(ctx context.Context, key string) (*models.QualityProfile, error)
}

type profileChangeStore interface {
	Query(ctx context.Context, q models.ChangelogQuery) (int, []models.ProfileChangeRow, error)
}

type issueChangeStore interface {
	ListByIssue(ctx context.Context, issueKey, changeType string) ([]models.IssueChangeRow, error)
}

type userLookup interface {
	FindByLogins(ctx context.Context, logins []string) (map[string]models.User, error)
}

type ruleLookup interface {
	FindByKeys(ctx context.Context, keys []string) (map[string]models.Rule, error)
}

// ChangelogLoader reads recorded changes and attaches actor and rule context to them.
type ChangelogLoader struct {
	profiles     profileResolver
	changes      profileChangeStore
	issueChanges issueChangeStore
	users        userLookup
	rules        ruleLookup
	metrics      *MetricsService
	logger       *zap.Logger
}

// ChangelogLoaderParams groups constructor dependencies.
type ChangelogLoaderParams struct {
	Profiles     profileResolver
	Changes      profileChangeStore
	IssueChanges issueChangeStore
	Users        userLookup
	Rules        ruleLookup
	Metrics      *MetricsService
	Logger       *zap.Logger
}

// NewChangelogLoader constructs a ChangelogLoader.
func NewChangelogLoader(params ChangelogLoaderParams) *ChangelogLoader {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangelogLoader{
		profiles:     params.Profiles,
		changes:      params.Changes,
		issueChanges: params.IssueChanges,
		users:        params.Users,
		rules:        params.Rules,
		metrics:      params.Metrics,
		logger:       logger,
	}
}

// RequireProfile returns NotFound when no quality profile has the given key.
func (l *ChangelogLoader) RequireProfile(ctx context.Context, profileKey string) error {
	if _, err := l.profiles.GetByKey(ctx, profileKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("quality profile %s not found", profileKey))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quality profile")
	}
	return nil
}

// Load returns the profile changes inside the query bounds, newest first. An unknown profile
// yields NotFound before storage is queried; actor and rule lookup failures are logged and leave
// the corresponding names empty.
func (l *ChangelogLoader) Load(ctx context.Context, q models.ChangelogQuery) (*models.Changelog, error) {
	if err := l.RequireProfile(ctx, q.EntityRef); err != nil {
		return nil, err
	}
	return l.LoadChanges(ctx, q)
}

// LoadChanges is Load for a profile already known to exist.
func (l *ChangelogLoader) LoadChanges(ctx context.Context, q models.ChangelogQuery) (*models.Changelog, error) {
	start := time.Now()
	total, rows, err := l.changes.Query(ctx, q)
	l.metrics.ObserveDBQuery("profile_changelog", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query profile changes")
	}

	changes := make([]*models.Change, 0, len(rows))
	for _, row := range rows {
		change, err := l.profileChange(row)
		if err != nil {
			l.logger.Warn("skipping invalid profile change", zap.String("change", row.Key), zap.Error(err))
			continue
		}
		changes = append(changes, change)
	}

	l.resolveActors(ctx, changes)
	l.resolveRules(ctx, changes)
	for _, change := range changes {
		change.Freeze()
	}
	return &models.Changelog{Total: total, Changes: changes}, nil
}

// LoadIssue returns the field diff changes of an issue, oldest first, with actor names resolved.
func (l *ChangelogLoader) LoadIssue(ctx context.Context, issueKey string) ([]*models.Change, error) {
	start := time.Now()
	rows, err := l.issueChanges.ListByIssue(ctx, issueKey, models.IssueChangeTypeDiff)
	l.metrics.ObserveDBQuery("issue_changelog", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query issue changes")
	}

	changes := make([]*models.Change, 0, len(rows))
	for _, row := range rows {
		change, err := issueChange(row)
		if err != nil {
			l.logger.Warn("skipping invalid issue change", zap.String("change", row.Key), zap.Error(err))
			continue
		}
		changes = append(changes, change)
	}

	l.resolveActors(ctx, changes)
	for _, change := range changes {
		change.Freeze()
	}
	return changes, nil
}

func (l *ChangelogLoader) profileChange(row models.ProfileChangeRow) (*models.Change, error) {
	change, err := models.NewChange(row.Key, models.ChangeType(row.ChangeType), row.CreatedAt)
	if err != nil {
		return nil, err
	}
	if row.UserLogin != nil {
		change.Actor = *row.UserLogin
	}
	if len(row.Data) == 0 {
		return change, nil
	}

	var data models.ProfileChangeData
	if err := json.Unmarshal(row.Data, &data); err != nil {
		l.logger.Warn("unreadable profile change data", zap.String("change", row.Key), zap.Error(err))
		return change, nil
	}
	change.Severity = data.Severity
	change.Inheritance = data.Inheritance
	change.RuleKey = data.RuleKey
	for _, param := range data.Params {
		if err := change.Params.Set(param.Name, models.Diff{Old: param.Old, New: param.New}); err != nil {
			l.logger.Debug("ignoring parameter diff", zap.String("change", row.Key), zap.String("param", param.Name), zap.Error(err))
		}
	}
	return change, nil
}

func issueChange(row models.IssueChangeRow) (*models.Change, error) {
	change, err := models.NewChange(row.Key, models.ChangeTypeIssueDiff, row.CreatedAt)
	if err != nil {
		return nil, err
	}
	if row.UserLogin != nil {
		change.Actor = *row.UserLogin
	}
	diffs, err := models.ParseFieldDiffs(row.Data)
	if err != nil {
		return nil, err
	}
	change.FieldDiffs = diffs
	return change, nil
}

func (l *ChangelogLoader) resolveActors(ctx context.Context, changes []*models.Change) {
	logins := distinct(changes, func(c *models.Change) string { return c.Actor })
	if len(logins) == 0 || l.users == nil {
		return
	}
	users, err := l.users.FindByLogins(ctx, logins)
	if err != nil {
		l.logger.Warn("actor lookup failed", zap.Strings("logins", logins), zap.Error(err))
		l.metrics.RecordLookupFailure("users")
		return
	}
	for _, change := range changes {
		if user, ok := users[change.Actor]; ok {
			change.ActorDisplayName = user.DisplayName()
		}
	}
}

func (l *ChangelogLoader) resolveRules(ctx context.Context, changes []*models.Change) {
	keys := distinct(changes, func(c *models.Change) string { return c.RuleKey })
	if len(keys) == 0 || l.rules == nil {
		return
	}
	rules, err := l.rules.FindByKeys(ctx, keys)
	if err != nil {
		l.logger.Warn("rule lookup failed", zap.Strings("rules", keys), zap.Error(err))
		l.metrics.RecordLookupFailure("rules")
		return
	}
	for _, change := range changes {
		if rule, ok := rules[change.RuleKey]; ok {
			change.RuleName = rule.Name
		}
	}
}

func distinct(changes []*models.Change, field func(*models.Change) string) []string {
	seen := make(map[string]struct{}, len(changes))
	var values []string
	for _, change := range changes {
		value := field(change)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
