package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/i18n"
)

type issueStore interface {
	FindByKey(ctx context.Context, key string) (*models.Issue, error)
	FindComponentsByKeys(ctx context.Context, keys []string) (map[string]models.Component, error)
	FindActionPlan(ctx context.Context, key string) (*models.ActionPlan, error)
}

type issueRuleLookup interface {
	ruleLookup
	FindCharacteristicByID(ctx context.Context, id int64) (*models.Characteristic, error)
}

type issueChangelogLoader interface {
	LoadIssue(ctx context.Context, issueKey string) ([]*models.Change, error)
}

type markdownRenderer interface {
	ToHTML(src string) (string, error)
}

// DateLocalizer adds localized dates and ages to message lookup.
type DateLocalizer interface {
	Localizer
	FormatDateTime(locale string, t time.Time) string
	AgeFromNow(locale string, t, now time.Time) string
}

// IssueShowService assembles the detail view of one issue.
type IssueShowService struct {
	issues    issueStore
	rules     issueRuleLookup
	users     userLookup
	changes   issueChangelogLoader
	comments  issueChangeStore
	diffs     *DiffFormatter
	debt      *DebtFormatter
	localizer DateLocalizer
	markdown  markdownRenderer
	metrics   *MetricsService
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// IssueShowServiceParams groups constructor dependencies.
type IssueShowServiceParams struct {
	Issues      issueStore
	Rules       issueRuleLookup
	Users       userLookup
	Changes     issueChangelogLoader
	Comments    issueChangeStore
	Diffs       *DiffFormatter
	Localizer   DateLocalizer
	Markdown    markdownRenderer
	HoursPerDay int
	Metrics     *MetricsService
	Location    *time.Location
	Logger      *zap.Logger
}

// NewIssueShowService constructs an IssueShowService.
func NewIssueShowService(params IssueShowServiceParams) *IssueShowService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var localizer DateLocalizer = params.Localizer
	if localizer == nil {
		localizer = i18n.Default()
	}
	location := params.Location
	if location == nil {
		location = time.UTC
	}
	diffs := params.Diffs
	if diffs == nil {
		diffs = NewDiffFormatter(DiffFormatterParams{Localizer: localizer, Users: params.Users, Rules: params.Rules, HoursPerDay: params.HoursPerDay, Metrics: params.Metrics, Logger: logger})
	}
	return &IssueShowService{
		issues:    params.Issues,
		rules:     params.Rules,
		users:     params.Users,
		changes:   params.Changes,
		comments:  params.Comments,
		diffs:     diffs,
		debt:      NewDebtFormatter(localizer, params.HoursPerDay),
		localizer: localizer,
		markdown:  params.Markdown,
		metrics:   params.Metrics,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Show returns the issue with its workflow options, comments and changelog as seen by viewer.
func (s *IssueShowService) Show(ctx context.Context, issueKey string, viewer models.Viewer) (*dto.IssueShowResponse, error) {
	if issueKey == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issue key is required")
	}
	issue, err := s.issues.FindByKey(ctx, issueKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("issue %s not found", issueKey))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}

	changes, err := s.changes.LoadIssue(ctx, issueKey)
	if err != nil {
		return nil, err
	}
	commentRows, err := s.comments.ListByIssue(ctx, issueKey, models.IssueChangeTypeComment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}

	locale := viewer.Locale
	now := s.now()
	users := s.lookupUsers(ctx, issue, commentRows)

	detail := dto.IssueDetail{
		Key:         issue.Key,
		Component:   issue.ComponentKey,
		Rule:        issue.RuleKey,
		Line:        issue.Line,
		Resolution:  deref(issue.Resolution),
		Status:      issue.Status,
		Severity:    issue.Severity,
		Author:      deref(issue.AuthorLogin),
		Transitions: IssueTransitions(issue, viewer),
		Actions:     IssueActions(issue, viewer),
	}
	s.addComponents(ctx, &detail, issue)
	s.addRule(ctx, &detail, issue)
	s.addActionPlan(ctx, &detail, issue)
	s.addDates(&detail, issue, locale, now)
	s.addUsers(&detail, issue, users)
	if issue.TechnicalDebt != nil {
		detail.Debt = s.debt.Format(locale, *issue.TechnicalDebt)
	}
	detail.Comments = s.commentEntries(commentRows, users, viewer, now)
	detail.Changelog = s.changelogEntries(ctx, issue, changes, locale)

	return &dto.IssueShowResponse{Issue: detail}, nil
}

func (s *IssueShowService) lookupUsers(ctx context.Context, issue *models.Issue, comments []models.IssueChangeRow) map[string]models.User {
	seen := map[string]struct{}{}
	var logins []string
	add := func(login *string) {
		if login == nil || *login == "" {
			return
		}
		if _, ok := seen[*login]; ok {
			return
		}
		seen[*login] = struct{}{}
		logins = append(logins, *login)
	}
	add(issue.Assignee)
	add(issue.Reporter)
	for i := range comments {
		add(comments[i].UserLogin)
	}
	if len(logins) == 0 || s.users == nil {
		return nil
	}
	users, err := s.users.FindByLogins(ctx, logins)
	if err != nil {
		s.logger.Warn("user lookup failed while showing issue", zap.String("issue", issue.Key), zap.Error(err))
		s.metrics.RecordLookupFailure("users")
		return nil
	}
	return users
}

func (s *IssueShowService) addComponents(ctx context.Context, detail *dto.IssueDetail, issue *models.Issue) {
	keys := []string{issue.ComponentKey}
	if issue.ProjectKey != nil && *issue.ProjectKey != issue.ComponentKey {
		keys = append(keys, *issue.ProjectKey)
	}
	components, err := s.issues.FindComponentsByKeys(ctx, keys)
	if err != nil {
		s.logger.Warn("component lookup failed", zap.String("issue", issue.Key), zap.Error(err))
		s.metrics.RecordLookupFailure("components")
	}
	if component, ok := components[issue.ComponentKey]; ok {
		detail.ComponentLongName = component.DisplayName()
		detail.ComponentQualifier = component.Qualifier
	}
	if issue.ProjectKey != nil {
		detail.Project = *issue.ProjectKey
		if project, ok := components[*issue.ProjectKey]; ok {
			detail.ProjectLongName = project.DisplayName()
		}
	}
}

func (s *IssueShowService) addRule(ctx context.Context, detail *dto.IssueDetail, issue *models.Issue) {
	detail.Message = deref(issue.Message)
	if s.rules == nil {
		return
	}
	rules, err := s.rules.FindByKeys(ctx, []string{issue.RuleKey})
	if err != nil {
		s.logger.Warn("rule lookup failed", zap.String("issue", issue.Key), zap.Error(err))
		s.metrics.RecordLookupFailure("rules")
		return
	}
	rule, ok := rules[issue.RuleKey]
	if !ok {
		return
	}
	detail.RuleName = rule.Name
	if detail.Message == "" {
		detail.Message = rule.Name
	}
	if rule.CharacteristicID == nil {
		return
	}
	sub, err := s.rules.FindCharacteristicByID(ctx, *rule.CharacteristicID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("characteristic lookup failed", zap.Int64("characteristic", *rule.CharacteristicID), zap.Error(err))
			s.metrics.RecordLookupFailure("characteristics")
		}
		return
	}
	detail.SubCharacteristic = sub.Name
	if sub.ParentID == nil {
		return
	}
	parent, err := s.rules.FindCharacteristicByID(ctx, *sub.ParentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("characteristic lookup failed", zap.Int64("characteristic", *sub.ParentID), zap.Error(err))
			s.metrics.RecordLookupFailure("characteristics")
		}
		return
	}
	detail.Characteristic = parent.Name
}

func (s *IssueShowService) addActionPlan(ctx context.Context, detail *dto.IssueDetail, issue *models.Issue) {
	if issue.ActionPlanKey == nil || *issue.ActionPlanKey == "" {
		return
	}
	detail.ActionPlan = *issue.ActionPlanKey
	plan, err := s.issues.FindActionPlan(ctx, *issue.ActionPlanKey)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("action plan lookup failed", zap.String("issue", issue.Key), zap.Error(err))
			s.metrics.RecordLookupFailure("action_plans")
		}
		return
	}
	detail.ActionPlanName = plan.Name
}

func (s *IssueShowService) addDates(detail *dto.IssueDetail, issue *models.Issue, locale string, now time.Time) {
	detail.CreationDate = s.wireDate(issue.CreatedAt)
	detail.FCreationDate = s.localizer.FormatDateTime(locale, issue.CreatedAt.In(s.location))
	if issue.UpdatedAt != nil {
		detail.UpdateDate = s.wireDate(*issue.UpdatedAt)
		detail.FUpdateDate = s.localizer.FormatDateTime(locale, issue.UpdatedAt.In(s.location))
		detail.FUpdateAge = s.localizer.AgeFromNow(locale, *issue.UpdatedAt, now)
	}
	if issue.ClosedAt != nil {
		detail.CloseDate = s.wireDate(*issue.ClosedAt)
		detail.FCloseDate = s.localizer.FormatDateTime(locale, issue.ClosedAt.In(s.location))
	}
}

func (s *IssueShowService) addUsers(detail *dto.IssueDetail, issue *models.Issue, users map[string]models.User) {
	if issue.Assignee != nil && *issue.Assignee != "" {
		detail.Assignee = *issue.Assignee
		if user, ok := users[*issue.Assignee]; ok {
			detail.AssigneeName = user.DisplayName()
		}
	}
	if issue.Reporter != nil && *issue.Reporter != "" {
		detail.Reporter = *issue.Reporter
		if user, ok := users[*issue.Reporter]; ok {
			detail.ReporterName = user.DisplayName()
		}
	}
}

func (s *IssueShowService) commentEntries(rows []models.IssueChangeRow, users map[string]models.User, viewer models.Viewer, now time.Time) []dto.IssueCommentEntry {
	entries := make([]dto.IssueCommentEntry, 0, len(rows))
	for _, row := range rows {
		createdAt := time.UnixMilli(row.CreatedAt)
		entry := dto.IssueCommentEntry{
			Key:         row.Key,
			Raw:         row.Data,
			HTML:        s.renderMarkdown(row),
			CreatedAt:   s.wireDate(createdAt),
			FCreatedAge: s.localizer.AgeFromNow(viewer.Locale, createdAt, now),
		}
		if row.UserLogin != nil {
			entry.Login = *row.UserLogin
			if user, ok := users[*row.UserLogin]; ok {
				entry.UserName = user.DisplayName()
			}
			entry.Updatable = viewer.IsLoggedIn() && viewer.Login == *row.UserLogin
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *IssueShowService) renderMarkdown(row models.IssueChangeRow) string {
	if s.markdown == nil {
		return html.EscapeString(row.Data)
	}
	out, err := s.markdown.ToHTML(row.Data)
	if err != nil {
		s.logger.Warn("comment markdown not rendered", zap.String("comment", row.Key), zap.Error(err))
		return html.EscapeString(row.Data)
	}
	return out
}

func (s *IssueShowService) changelogEntries(ctx context.Context, issue *models.Issue, changes []*models.Change, locale string) []dto.IssueChangelogEntry {
	entries := make([]dto.IssueChangelogEntry, 0, len(changes)+1)
	entries = append(entries, dto.IssueChangelogEntry{
		CreationDate:  s.wireDate(issue.CreatedAt),
		FCreationDate: s.localizer.FormatDateTime(locale, issue.CreatedAt.In(s.location)),
		Diffs:         []string{s.localizer.Message(locale, "created")},
	})
	rendered := s.diffs.FormatAll(ctx, locale, changes)
	for i, change := range changes {
		entry := dto.IssueChangelogEntry{
			CreationDate:  s.wireDate(change.Time()),
			FCreationDate: s.localizer.FormatDateTime(locale, change.Time().In(s.location)),
			Diffs:         rendered[i],
		}
		if change.HasActor() {
			entry.UserName = change.ActorDisplayName
			if entry.UserName == "" {
				entry.UserName = change.Actor
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *IssueShowService) wireDate(t time.Time) string {
	return t.In(s.location).Format(ChangelogDateTimeLayout)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
