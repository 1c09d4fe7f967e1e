package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

const profileChangeColumns = `kee, qprofile_key, change_type, user_login, change_data, created_at`

// ProfileChangeRepository stores the append-only qprofile_changes log.
type ProfileChangeRepository struct {
	db *sqlx.DB
}

// NewProfileChangeRepository creates a new instance of ProfileChangeRepository.
func NewProfileChangeRepository(db *sqlx.DB) *ProfileChangeRepository {
	return &ProfileChangeRepository{db: db}
}

// Query counts the changes of one profile inside [FromIncluded, ToExcluded) and returns the
// requested page, newest first.
func (r *ProfileChangeRepository) Query(ctx context.Context, q models.ChangelogQuery) (int, []models.ProfileChangeRow, error) {
	conditions := []string{"qprofile_key = $1"}
	args := []interface{}{q.EntityRef}
	if q.FromIncluded != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *q.FromIncluded)
	}
	if q.ToExcluded != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)+1))
		args = append(args, *q.ToExcluded)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM qprofile_changes"+where, args...); err != nil {
		return 0, nil, fmt.Errorf("count profile changes: %w", err)
	}
	if total == 0 {
		return 0, []models.ProfileChangeRow{}, nil
	}

	query := "SELECT " + profileChangeColumns + " FROM qprofile_changes" + where + " ORDER BY created_at DESC, kee DESC"
	if q.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.PageSize, q.Offset())
	}
	rows := []models.ProfileChangeRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return 0, nil, fmt.Errorf("list profile changes: %w", err)
	}
	return total, rows, nil
}

// Insert appends a change row.
func (r *ProfileChangeRepository) Insert(ctx context.Context, row *models.ProfileChangeRow) error {
	const query = `INSERT INTO qprofile_changes (` + profileChangeColumns + `) VALUES (:kee, :qprofile_key, :change_type, :user_login, :change_data, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert profile change: %w", err)
	}
	return nil
}
