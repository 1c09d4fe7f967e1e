package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/pkg/i18n"
)

// Localizer resolves message keys for a locale, falling back to the default locale. Unknown keys
// are returned as is.
type Localizer interface {
	Message(locale, key string, args ...string) string
}

func defaultLocalizer(l Localizer) Localizer {
	if l == nil {
		return i18n.Default()
	}
	return l
}

// Diff fields rendered through a lookup instead of their raw value.
const (
	fieldSeverity      = "severity"
	fieldInheritance   = "inheritance"
	fieldRuleKey       = "ruleKey"
	fieldAssignee      = "assignee"
	fieldReporter      = "reporter"
	fieldTechnicalDebt = "technicalDebt"
)

// DiffFormatter renders the field and parameter diffs of changes as display strings. It keeps no
// state between calls and never modifies the changes it reads.
type DiffFormatter struct {
	localizer Localizer
	users     userLookup
	rules     ruleLookup
	debt      *DebtFormatter
	metrics   *MetricsService
	logger    *zap.Logger
}

// DiffFormatterParams groups constructor dependencies. Users and Rules are optional.
type DiffFormatterParams struct {
	Localizer   Localizer
	Users       userLookup
	Rules       ruleLookup
	HoursPerDay int
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewDiffFormatter constructs a DiffFormatter.
func NewDiffFormatter(params DiffFormatterParams) *DiffFormatter {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	localizer := defaultLocalizer(params.Localizer)
	return &DiffFormatter{
		localizer: localizer,
		users:     params.Users,
		rules:     params.Rules,
		debt:      NewDebtFormatter(localizer, params.HoursPerDay),
		metrics:   params.Metrics,
		logger:    logger,
	}
}

// diffLabels holds the display names resolved for one formatting call.
type diffLabels struct {
	users map[string]models.User
	rules map[string]models.Rule
}

// Format renders one change: field diffs first, then parameter diffs, each in insertion order.
func (f *DiffFormatter) Format(ctx context.Context, locale string, change *models.Change) []string {
	return f.FormatAll(ctx, locale, []*models.Change{change})[0]
}

// FormatAll renders several changes, resolving users and rules referenced by their diffs with a
// single lookup each. The result is indexed like changes.
func (f *DiffFormatter) FormatAll(ctx context.Context, locale string, changes []*models.Change) [][]string {
	labels := f.resolve(ctx, changes)
	result := make([][]string, len(changes))
	for i, change := range changes {
		result[i] = f.render(locale, change, labels)
	}
	return result
}

func (f *DiffFormatter) render(locale string, change *models.Change, labels diffLabels) []string {
	if change == nil {
		return []string{}
	}
	out := make([]string, 0, change.FieldDiffs.Len()+change.Params.Len())
	change.FieldDiffs.Each(func(name string, diff models.Diff) {
		out = append(out, f.sentence(locale, f.fieldLabel(locale, name), diff, func(v string) string {
			return f.fieldValue(locale, name, v, labels)
		}))
	})
	change.Params.Each(func(name string, diff models.Diff) {
		label := f.localizer.Message(locale, "changelog.param", name)
		out = append(out, f.sentence(locale, label, diff, func(v string) string { return v }))
	})
	return out
}

func (f *DiffFormatter) sentence(locale, label string, diff models.Diff, value func(string) string) string {
	switch {
	case !diff.Old.IsPresent():
		return f.localizer.Message(locale, "changelog.diff.set", label, value(diff.New.String()))
	case !diff.New.IsPresent():
		return f.localizer.Message(locale, "changelog.diff.removed", label, value(diff.Old.String()))
	default:
		return f.localizer.Message(locale, "changelog.diff.changed", label, value(diff.Old.String()), value(diff.New.String()))
	}
}

func (f *DiffFormatter) fieldLabel(locale, name string) string {
	key := "changelog.field." + name
	if label := f.localizer.Message(locale, key); label != key {
		return label
	}
	return name
}

func (f *DiffFormatter) fieldValue(locale, name, value string, labels diffLabels) string {
	switch name {
	case fieldSeverity, fieldInheritance:
		key := name + "." + value
		if label := f.localizer.Message(locale, key); label != key {
			return label
		}
	case fieldRuleKey:
		if rule, ok := labels.rules[value]; ok && rule.Name != "" {
			return rule.Name
		}
	case fieldAssignee, fieldReporter:
		if user, ok := labels.users[value]; ok {
			return user.DisplayName()
		}
	case fieldTechnicalDebt:
		return f.debt.FormatValue(locale, value)
	}
	return value
}

func (f *DiffFormatter) resolve(ctx context.Context, changes []*models.Change) diffLabels {
	var logins, ruleKeys []string
	seen := map[string]struct{}{}
	collect := func(target *[]string, prefix string, diff models.Diff) {
		for _, v := range []models.Value{diff.Old, diff.New} {
			if !v.IsPresent() || v.String() == "" {
				continue
			}
			if _, ok := seen[prefix+v.String()]; ok {
				continue
			}
			seen[prefix+v.String()] = struct{}{}
			*target = append(*target, v.String())
		}
	}
	for _, change := range changes {
		if change == nil {
			continue
		}
		change.FieldDiffs.Each(func(name string, diff models.Diff) {
			switch name {
			case fieldAssignee, fieldReporter:
				collect(&logins, "u:", diff)
			case fieldRuleKey:
				collect(&ruleKeys, "r:", diff)
			}
		})
	}

	var labels diffLabels
	if len(logins) > 0 && f.users != nil {
		users, err := f.users.FindByLogins(ctx, logins)
		if err != nil {
			f.logger.Warn("user lookup failed while formatting diffs", zap.Strings("logins", logins), zap.Error(err))
			f.metrics.RecordLookupFailure("users")
		}
		labels.users = users
	}
	if len(ruleKeys) > 0 && f.rules != nil {
		rules, err := f.rules.FindByKeys(ctx, ruleKeys)
		if err != nil {
			f.logger.Warn("rule lookup failed while formatting diffs", zap.Strings("rules", ruleKeys), zap.Error(err))
			f.metrics.RecordLookupFailure("rules")
		}
		labels.rules = rules
	}
	return labels
}
