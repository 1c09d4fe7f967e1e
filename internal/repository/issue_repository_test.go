package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

func TestIssueFindByKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	created := time.Date(2016, 9, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"kee", "component_kee", "project_kee", "rule_key", "line", "message", "resolution", "status", "severity", "author_login", "assignee", "reporter", "action_plan_kee", "technical_debt", "created_at", "updated_at", "closed_at"}).
		AddRow("I1", "proj:src/Foo.xoo", "proj", "xoo:x1", 12, "Fix it", nil, "OPEN", "MAJOR", nil, "marcel", nil, nil, int64(90), created, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM issues WHERE kee = $1")).
		WithArgs("I1").
		WillReturnRows(rows)

	issue, err := repo.FindByKey(context.Background(), "I1")
	require.NoError(t, err)
	assert.Equal(t, "xoo:x1", issue.RuleKey)
	require.NotNil(t, issue.Line)
	assert.Equal(t, 12, *issue.Line)
	assert.False(t, issue.IsResolved())
	require.NotNil(t, issue.TechnicalDebt)
	assert.Equal(t, int64(90), *issue.TechnicalDebt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueFindByKeyNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	mock.ExpectQuery("FROM issues").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFindComponentsByKeys(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueRepository(db)

	rows := sqlmock.NewRows([]string{"kee", "long_name", "qualifier", "project_kee"}).
		AddRow("proj", "My Project", "TRK", nil).
		AddRow("proj:src/Foo.xoo", nil, "FIL", "proj")
	mock.ExpectQuery(regexp.QuoteMeta("FROM components WHERE kee = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	components, err := repo.FindComponentsByKeys(context.Background(), []string{"proj", "proj:src/Foo.xoo"})
	require.NoError(t, err)
	assert.Equal(t, "My Project", components["proj"].DisplayName())
	assert.Equal(t, "proj:src/Foo.xoo", components["proj:src/Foo.xoo"].DisplayName())
}

func TestIssueChangeListByIssue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueChangeRepository(db)

	rows := sqlmock.NewRows([]string{"kee", "issue_key", "user_login", "change_type", "change_data", "created_at", "updated_at"}).
		AddRow("D1", "I1", "marcel", "diff", "severity=MINOR|MAJOR", int64(1), int64(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM issue_changes WHERE issue_key = $1 AND change_type = $2 ORDER BY created_at ASC, kee ASC")).
		WithArgs("I1", models.IssueChangeTypeDiff).
		WillReturnRows(rows)

	changes, err := repo.ListByIssue(context.Background(), "I1", models.IssueChangeTypeDiff)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "severity=MINOR|MAJOR", changes[0].Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueChangeInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIssueChangeRepository(db)

	mock.ExpectExec("INSERT INTO issue_changes").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), &models.IssueChangeRow{Key: "D1", IssueKey: "I1", ChangeType: "diff", Data: "status=OPEN|CONFIRMED"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
