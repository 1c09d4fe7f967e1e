package models

import "time"

// Issue statuses.
const (
	IssueStatusOpen      = "OPEN"
	IssueStatusConfirmed = "CONFIRMED"
	IssueStatusReopened  = "REOPENED"
	IssueStatusResolved  = "RESOLVED"
	IssueStatusClosed    = "CLOSED"
)

// Issue resolutions.
const (
	ResolutionFixed         = "FIXED"
	ResolutionFalsePositive = "FALSE-POSITIVE"
	ResolutionRemoved       = "REMOVED"
)

// Issue change kinds stored in issue_changes.change_type.
const (
	IssueChangeTypeDiff    = "diff"
	IssueChangeTypeComment = "comment"
)

// Issue is a rule violation raised on a component.
type Issue struct {
	Key           string     `db:"kee"`
	ComponentKey  string     `db:"component_kee"`
	ProjectKey    *string    `db:"project_kee"`
	RuleKey       string     `db:"rule_key"`
	Line          *int       `db:"line"`
	Message       *string    `db:"message"`
	Resolution    *string    `db:"resolution"`
	Status        string     `db:"status"`
	Severity      string     `db:"severity"`
	AuthorLogin   *string    `db:"author_login"`
	Assignee      *string    `db:"assignee"`
	Reporter      *string    `db:"reporter"`
	ActionPlanKey *string    `db:"action_plan_kee"`
	TechnicalDebt *int64     `db:"technical_debt"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
	ClosedAt      *time.Time `db:"closed_at"`
}

// IsResolved reports whether the issue carries a resolution.
func (i Issue) IsResolved() bool {
	return i.Resolution != nil && *i.Resolution != ""
}

// Component is a project, directory or file an issue is raised on.
type Component struct {
	Key        string  `db:"kee"`
	LongName   *string `db:"long_name"`
	Qualifier  string  `db:"qualifier"`
	ProjectKey *string `db:"project_kee"`
}

// DisplayName returns the long name, or the key when the long name is blank.
func (c Component) DisplayName() string {
	if c.LongName != nil && *c.LongName != "" {
		return *c.LongName
	}
	return c.Key
}

// ActionPlan groups issues planned together.
type ActionPlan struct {
	Key        string `db:"kee"`
	Name       string `db:"name"`
	ProjectKey string `db:"project_kee"`
}

// IssueChangeRow is an issue_changes row; Data holds field diffs for "diff" rows and markdown for
// "comment" rows.
type IssueChangeRow struct {
	Key        string  `db:"kee"`
	IssueKey   string  `db:"issue_key"`
	UserLogin  *string `db:"user_login"`
	ChangeType string  `db:"change_type"`
	Data       string  `db:"change_data"`
	CreatedAt  int64   `db:"created_at"`
	UpdatedAt  int64   `db:"updated_at"`
}

// IssueComment is a comment attached to an issue.
type IssueComment struct {
	Key       string
	Login     string
	Markdown  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
