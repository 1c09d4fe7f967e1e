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

// RuleRepository reads rules and the technical debt characteristics they belong to.
type RuleRepository struct {
	db *sqlx.DB
}

// NewRuleRepository creates a new instance of RuleRepository.
func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// FindByKeys returns the known rules among keys, keyed by rule key.
func (r *RuleRepository) FindByKeys(ctx context.Context, keys []string) (map[string]models.Rule, error) {
	result := make(map[string]models.Rule, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	const query = `SELECT rule_key, name, COALESCE(language, '') AS language, characteristic_id FROM rules WHERE rule_key = ANY($1)`
	var rules []models.Rule
	if err := r.db.SelectContext(ctx, &rules, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("find rules by keys: %w", err)
	}
	for _, rule := range rules {
		result[rule.Key] = rule
	}
	return result, nil
}

// FindCharacteristicByID returns a debt characteristic. sql.ErrNoRows is returned unwrapped.
func (r *RuleRepository) FindCharacteristicByID(ctx context.Context, id int64) (*models.Characteristic, error) {
	const query = `SELECT id, kee, name, parent_id FROM characteristics WHERE id = $1 LIMIT 1`
	var characteristic models.Characteristic
	if err := r.db.GetContext(ctx, &characteristic, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find characteristic by id: %w", err)
	}
	return &characteristic, nil
}
