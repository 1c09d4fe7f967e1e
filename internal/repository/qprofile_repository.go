package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Nandakumartc/sonarqube/internal/models"
)

// QualityProfileRepository reads rules_profiles.
type QualityProfileRepository struct {
	db *sqlx.DB
}

// NewQualityProfileRepository creates a new instance of QualityProfileRepository.
func NewQualityProfileRepository(db *sqlx.DB) *QualityProfileRepository {
	return &QualityProfileRepository{db: db}
}

// GetByKey returns a profile by key. sql.ErrNoRows is returned unwrapped.
func (r *QualityProfileRepository) GetByKey(ctx context.Context, key string) (*models.QualityProfile, error) {
	const query = `SELECT kee, name, language, parent_kee, created_at FROM rules_profiles WHERE kee = $1 LIMIT 1`
	var profile models.QualityProfile
	if err := r.db.GetContext(ctx, &profile, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find quality profile by key: %w", err)
	}
	return &profile, nil
}
