package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"vacancyhub/services/vacancies/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "vacancies.json"), cfg.VacanciesFilePath())
	assert.Equal(t, "https://api.hh.ru/vacancies", cfg.HHAPIBaseURL)
	assert.Equal(t, 20, cfg.HHPages)
	assert.Equal(t, 100, cfg.HHPerPage)
	assert.Equal(t, 1, cfg.HHFetchWorkers)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.ArchiveEnabled)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/vacancies")
	t.Setenv("VACANCIES_FILE", "run.json")
	t.Setenv("HH_PAGES", "5")
	t.Setenv("HH_FETCH_WORKERS", "4")
	t.Setenv("HH_API_TIMEOUT", "2s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ARCHIVE_ENABLED", "true")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vacancies/run.json", cfg.VacanciesFilePath())
	assert.Equal(t, 5, cfg.HHPages)
	assert.Equal(t, 4, cfg.HHFetchWorkers)
	assert.Equal(t, 2*time.Second, cfg.HHAPITimeout)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.ArchiveEnabled)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HH_PER_PAGE", "lots")
	t.Setenv("CACHE_TTL", "forever")
	t.Setenv("LOG_DEVELOPMENT", "maybe")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.HHPerPage)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.LogDevelopment)
}
