package dto

// IssueShowResponse wraps the issue detail.
type IssueShowResponse struct {
	Issue IssueDetail `json:"issue"`
}

// IssueDetail describes one issue with its workflow options, comments and changelog.
type IssueDetail struct {
	Key                string                `json:"key"`
	Component          string                `json:"component"`
	ComponentLongName  string                `json:"componentLongName,omitempty"`
	ComponentQualifier string                `json:"componentQualifier,omitempty"`
	Project            string                `json:"project,omitempty"`
	ProjectLongName    string                `json:"projectLongName,omitempty"`
	Rule               string                `json:"rule"`
	RuleName           string                `json:"ruleName,omitempty"`
	Line               *int                  `json:"line,omitempty"`
	Message            string                `json:"message,omitempty"`
	Resolution         string                `json:"resolution,omitempty"`
	Status             string                `json:"status"`
	Severity           string                `json:"severity"`
	Author             string                `json:"author,omitempty"`
	ActionPlan         string                `json:"actionPlan,omitempty"`
	ActionPlanName     string                `json:"actionPlanName,omitempty"`
	Debt               string                `json:"debt,omitempty"`
	CreationDate       string                `json:"creationDate"`
	FCreationDate      string                `json:"fCreationDate"`
	UpdateDate         string                `json:"updateDate,omitempty"`
	FUpdateDate        string                `json:"fUpdateDate,omitempty"`
	FUpdateAge         string                `json:"fUpdateAge,omitempty"`
	CloseDate          string                `json:"closeDate,omitempty"`
	FCloseDate         string                `json:"fCloseDate,omitempty"`
	Assignee           string                `json:"assignee,omitempty"`
	AssigneeName       string                `json:"assigneeName,omitempty"`
	Reporter           string                `json:"reporter,omitempty"`
	ReporterName       string                `json:"reporterName,omitempty"`
	Characteristic     string                `json:"characteristic,omitempty"`
	SubCharacteristic  string                `json:"subCharacteristic,omitempty"`
	Transitions        []string              `json:"transitions"`
	Actions            []string              `json:"actions"`
	Comments           []IssueCommentEntry   `json:"comments"`
	Changelog          []IssueChangelogEntry `json:"changelog"`
}

// IssueCommentEntry is a comment rendered for display.
type IssueCommentEntry struct {
	Key         string `json:"key"`
	Login       string `json:"login,omitempty"`
	UserName    string `json:"userName,omitempty"`
	Raw         string `json:"raw"`
	HTML        string `json:"html"`
	CreatedAt   string `json:"createdAt"`
	FCreatedAge string `json:"fCreatedAge"`
	Updatable   bool   `json:"updatable"`
}

// IssueChangelogEntry is one changelog line. The first entry of an issue changelog marks its
// creation.
type IssueChangelogEntry struct {
	UserName      string   `json:"userName,omitempty"`
	CreationDate  string   `json:"creationDate"`
	FCreationDate string   `json:"fCreationDate"`
	Diffs         []string `json:"diffs"`
}

// AddIssueCommentRequest adds a markdown comment to an issue.
type AddIssueCommentRequest struct {
	IssueKey string `json:"issueKey" validate:"required"`
	Text     string `json:"text" validate:"required"`
}
