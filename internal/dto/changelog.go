package dto

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

// ProfileChangelogRequest carries the query parameters of the profile changelog endpoints.
type ProfileChangelogRequest struct {
	ProfileKey string `form:"profileKey" validate:"required"`
	Since      string `form:"since"`
	To         string `form:"to"`
	Page       int    `form:"p" validate:"omitempty,min=1"`
	PageSize   int    `form:"ps" validate:"omitempty,min=1"`
}

// ProfileChangelogResponse is one page of a profile changelog.
type ProfileChangelogResponse struct {
	Paging    models.Pagination       `json:"paging"`
	Changelog []ProfileChangelogEntry `json:"changelog"`
}

// ProfileChangelogEntry is one rule activation event. Optional fields are omitted when absent.
type ProfileChangelogEntry struct {
	Date        string         `json:"date"`
	Action      string         `json:"action"`
	AuthorLogin string         `json:"authorLogin,omitempty"`
	AuthorName  string         `json:"authorName,omitempty"`
	Severity    string         `json:"severity,omitempty"`
	Inheritance string         `json:"inheritance,omitempty"`
	RuleKey     string         `json:"ruleKey,omitempty"`
	RuleName    string         `json:"ruleName,omitempty"`
	Params      *OrderedParams `json:"params,omitempty"`
}

// OrderedParams maps parameter names to their new value and keeps insertion order in JSON.
type OrderedParams = orderedmap.OrderedMap[string, string]

// NewOrderedParams returns an empty OrderedParams.
func NewOrderedParams() *OrderedParams {
	return orderedmap.New[string, string]()
}

// RecordProfileChangeRequest appends a rule activation event to a profile changelog.
type RecordProfileChangeRequest struct {
	ProfileKey  string               `json:"profileKey" validate:"required"`
	Action      string               `json:"action" validate:"required,oneof=ACTIVATED DEACTIVATED UPDATED"`
	RuleKey     string               `json:"ruleKey" validate:"required"`
	Severity    string               `json:"severity" validate:"omitempty,oneof=INFO MINOR MAJOR CRITICAL BLOCKER"`
	Inheritance string               `json:"inheritance" validate:"omitempty,oneof=NONE INHERITED OVERRIDES"`
	Params      []models.ParamChange `json:"params" validate:"omitempty,dive"`
}

// RecordIssueChangeRequest appends field diffs to an issue changelog.
type RecordIssueChangeRequest struct {
	IssueKey string        `json:"issueKey" validate:"required"`
	Diffs    []FieldChange `json:"diffs" validate:"required,min=1,dive"`
}

// FieldChange is one field transition; a missing old or new value is sent as null.
type FieldChange struct {
	Field string       `json:"field" validate:"required"`
	Old   models.Value `json:"old"`
	New   models.Value `json:"new"`
}

// RecordedChange identifies a stored change.
type RecordedChange struct {
	Key       string `json:"key"`
	Action    string `json:"action"`
	CreatedAt string `json:"createdAt"`
}
