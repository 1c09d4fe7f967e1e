package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "en", cfg.I18n.DefaultLocale)
	assert.Equal(t, 50, cfg.Changelog.DefaultPageSize)
	assert.Equal(t, 500, cfg.Changelog.MaxPageSize)
	assert.Equal(t, time.Minute, cfg.Changelog.CacheTTL)
	assert.Equal(t, 8, cfg.Issues.HoursPerDay)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_TIMEZONE", "Europe/Paris")
	t.Setenv("CHANGELOG_CACHE_TTL", "not-a-duration")
	t.Setenv("CHANGELOG_MAX_PAGE_SIZE", "-3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Changelog.CacheTTL)
	assert.Equal(t, 500, cfg.Changelog.MaxPageSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)

	loc, err := cfg.I18n.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "sonar", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=sonar sslmode=disable", cfg.DSN())
}
