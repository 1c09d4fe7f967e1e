package service

import "github.com/Nandakumartc/sonarqube/internal/models"

// Workflow transitions offered on an issue.
const (
	TransitionConfirm       = "confirm"
	TransitionUnconfirm     = "unconfirm"
	TransitionResolve       = "resolve"
	TransitionFalsePositive = "falsepositive"
	TransitionReopen        = "reopen"
)

// Issue actions offered to a logged-in viewer.
const (
	ActionComment     = "comment"
	ActionAssign      = "assign"
	ActionAssignToMe  = "assign_to_me"
	ActionPlan        = "plan"
	ActionSetSeverity = "set_severity"
)

var transitionsByStatus = map[string][]string{
	models.IssueStatusOpen:      {TransitionConfirm, TransitionResolve, TransitionFalsePositive},
	models.IssueStatusConfirmed: {TransitionUnconfirm, TransitionResolve, TransitionFalsePositive},
	models.IssueStatusReopened:  {TransitionConfirm, TransitionResolve, TransitionFalsePositive},
	models.IssueStatusResolved:  {TransitionReopen},
}

// IssueTransitions lists the transitions the viewer may apply from the issue's status. Anonymous
// viewers get none; only admins may flag a false positive.
func IssueTransitions(issue *models.Issue, viewer models.Viewer) []string {
	out := []string{}
	if !viewer.IsLoggedIn() {
		return out
	}
	for _, transition := range transitionsByStatus[issue.Status] {
		if transition == TransitionFalsePositive && !viewer.IsAdmin() {
			continue
		}
		out = append(out, transition)
	}
	return out
}

// IssueActions lists the actions available to the viewer. Resolved issues only accept comments.
func IssueActions(issue *models.Issue, viewer models.Viewer) []string {
	out := []string{}
	if !viewer.IsLoggedIn() {
		return out
	}
	out = append(out, ActionComment)
	if issue.IsResolved() {
		return out
	}
	out = append(out, ActionAssign)
	if issue.Assignee == nil || *issue.Assignee != viewer.Login {
		out = append(out, ActionAssignToMe)
	}
	out = append(out, ActionPlan)
	if viewer.IsAdmin() && issue.ProjectKey != nil {
		out = append(out, ActionSetSeverity)
	}
	return out
}
