package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

const issueColumns = `kee, component_kee, project_kee, rule_key, line, message, resolution, status, severity, author_login, assignee, reporter, action_plan_kee, technical_debt, created_at, updated_at, closed_at`

// IssueRepository reads issues with the components and action plans they reference.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new instance of IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// FindByKey returns an issue by key. sql.ErrNoRows is returned unwrapped.
func (r *IssueRepository) FindByKey(ctx context.Context, key string) (*models.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE kee = $1 LIMIT 1`
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find issue by key: %w", err)
	}
	return &issue, nil
}

// FindComponentsByKeys returns the known components among keys, keyed by component key.
func (r *IssueRepository) FindComponentsByKeys(ctx context.Context, keys []string) (map[string]models.Component, error) {
	result := make(map[string]models.Component, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	const query = `SELECT kee, long_name, qualifier, project_kee FROM components WHERE kee = ANY($1)`
	var components []models.Component
	if err := r.db.SelectContext(ctx, &components, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("find components by keys: %w", err)
	}
	for _, component := range components {
		result[component.Key] = component
	}
	return result, nil
}

// FindActionPlan returns an action plan by key. sql.ErrNoRows is returned unwrapped.
func (r *IssueRepository) FindActionPlan(ctx context.Context, key string) (*models.ActionPlan, error) {
	const query = `SELECT kee, name, project_kee FROM action_plans WHERE kee = $1 LIMIT 1`
	var plan models.ActionPlan
	if err := r.db.GetContext(ctx, &plan, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find action plan by key: %w", err)
	}
	return &plan, nil
}
