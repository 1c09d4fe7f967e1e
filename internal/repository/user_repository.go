package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

// UserRepository provides read access to user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByLogins returns the known users among logins, keyed by login. Unknown logins are absent
// from the map.
func (r *UserRepository) FindByLogins(ctx context.Context, logins []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(logins))
	if len(logins) == 0 {
		return result, nil
	}
	const query = `SELECT login, COALESCE(name, '') AS name, email, active, created_at FROM users WHERE login = ANY($1)`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(logins)); err != nil {
		return nil, fmt.Errorf("find users by logins: %w", err)
	}
	for _, user := range users {
		result[user.Login] = user
	}
	return result, nil
}
