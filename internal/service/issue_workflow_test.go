package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

func TestIssueTransitions(t *testing.T) {
	user := models.Viewer{Login: "simon", Role: models.RoleUser}
	issueAdmin := models.Viewer{Login: "simon", Role: models.RoleAdmin}

	tests := []struct {
		status string
		viewer models.Viewer
		want   []string
	}{
		{models.IssueStatusOpen, user, []string{"confirm", "resolve"}},
		{models.IssueStatusOpen, issueAdmin, []string{"confirm", "resolve", "falsepositive"}},
		{models.IssueStatusConfirmed, issueAdmin, []string{"unconfirm", "resolve", "falsepositive"}},
		{models.IssueStatusReopened, user, []string{"confirm", "resolve"}},
		{models.IssueStatusResolved, user, []string{"reopen"}},
		{models.IssueStatusClosed, issueAdmin, []string{}},
		{models.IssueStatusOpen, models.Viewer{}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.status+"/"+string(tc.viewer.Role), func(t *testing.T) {
			got := IssueTransitions(&models.Issue{Status: tc.status}, tc.viewer)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIssueActions(t *testing.T) {
	project := strPtr("org.sonar")
	fixed := strPtr(models.ResolutionFixed)

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, []string{}, IssueActions(&models.Issue{}, models.Viewer{}))
	})
	t.Run("resolved issue only accepts comments", func(t *testing.T) {
		issue := &models.Issue{Resolution: fixed, ProjectKey: project}
		assert.Equal(t, []string{"comment"}, IssueActions(issue, models.Viewer{Login: "simon", Role: models.RoleAdmin}))
	})
	t.Run("assignee cannot assign to self", func(t *testing.T) {
		issue := &models.Issue{Assignee: strPtr("simon")}
		assert.Equal(t, []string{"comment", "assign", "plan"}, IssueActions(issue, models.Viewer{Login: "simon"}))
	})
	t.Run("severity needs admin and project", func(t *testing.T) {
		admin := models.Viewer{Login: "simon", Role: models.RoleAdmin}
		assert.NotContains(t, IssueActions(&models.Issue{}, admin), "set_severity")
		assert.Contains(t, IssueActions(&models.Issue{ProjectKey: project}, admin), "set_severity")
	})
}
