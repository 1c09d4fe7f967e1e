package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

type profileResolverStub struct {
	profiles map[string]*models.QualityProfile
	err      error
	calls    int
}

func (s *profileResolverStub) GetByKey(ctx context.Context, key string) (*models.QualityProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if profile, ok := s.profiles[key]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

type profileChangeStoreStub struct {
	total   int
	rows    []models.ProfileChangeRow
	err     error
	queries []models.ChangelogQuery
}

func (s *profileChangeStoreStub) Query(ctx context.Context, q models.ChangelogQuery) (int, []models.ProfileChangeRow, error) {
	s.queries = append(s.queries, q)
	return s.total, s.rows, s.err
}

type issueChangeStoreStub struct {
	rows []models.IssueChangeRow
	err  error
}

func (s *issueChangeStoreStub) ListByIssue(ctx context.Context, issueKey, changeType string) ([]models.IssueChangeRow, error) {
	return s.rows, s.err
}

type userLookupStub struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
	asked [][]string
}

func (s *userLookupStub) FindByLogins(ctx context.Context, logins []string) (map[string]models.User, error) {
	s.mu.Lock()
	s.asked = append(s.asked, append([]string(nil), logins...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := map[string]models.User{}
	for _, login := range logins {
		if user, ok := s.users[login]; ok {
			result[login] = user
		}
	}
	return result, nil
}

type ruleLookupStub struct {
	mu    sync.Mutex
	rules map[string]models.Rule
	err   error
	calls int
}

func (s *ruleLookupStub) FindByKeys(ctx context.Context, keys []string) (map[string]models.Rule, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := map[string]models.Rule{}
	for _, key := range keys {
		if rule, ok := s.rules[key]; ok {
			result[key] = rule
		}
	}
	return result, nil
}

func strPtr(s string) *string { return &s }

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	raw, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[key] = raw
	r.mu.Unlock()
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(r.entries, key)
		}
	}
	return nil
}
