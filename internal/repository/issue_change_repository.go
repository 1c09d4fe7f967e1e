package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

const issueChangeColumns = `kee, issue_key, user_login, change_type, change_data, created_at, updated_at`

// IssueChangeRepository stores field diffs and comments of issues.
type IssueChangeRepository struct {
	db *sqlx.DB
}

// NewIssueChangeRepository creates a new instance of IssueChangeRepository.
func NewIssueChangeRepository(db *sqlx.DB) *IssueChangeRepository {
	return &IssueChangeRepository{db: db}
}

// ListByIssue returns the rows of one kind for an issue, oldest first.
func (r *IssueChangeRepository) ListByIssue(ctx context.Context, issueKey, changeType string) ([]models.IssueChangeRow, error) {
	const query = `SELECT ` + issueChangeColumns + ` FROM issue_changes WHERE issue_key = $1 AND change_type = $2 ORDER BY created_at ASC, kee ASC`
	rows := []models.IssueChangeRow{}
	if err := r.db.SelectContext(ctx, &rows, query, issueKey, changeType); err != nil {
		return nil, fmt.Errorf("list issue changes: %w", err)
	}
	return rows, nil
}

// Insert appends a change row.
func (r *IssueChangeRepository) Insert(ctx context.Context, row *models.IssueChangeRow) error {
	const query = `INSERT INTO issue_changes (` + issueChangeColumns + `) VALUES (:kee, :issue_key, :user_login, :change_type, :change_data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert issue change: %w", err)
	}
	return nil
}
