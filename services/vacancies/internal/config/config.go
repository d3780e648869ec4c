package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	DataDir       string
	VacanciesFile string

	HHAPIBaseURL   string
	HHUserAgent    string
	HHAPITimeout   time.Duration
	HHPages        int
	HHPerPage      int
	HHFetchWorkers int

	NATSURL         string
	NATSConnTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	ArchiveEnabled         bool
	ClickHouseDSN          string
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseDialTimeout  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string

	OTelCollectorURL string
	LogDevelopment   bool
}

func LoadConfig() (*Config, error) {
	config := &Config{
		DataDir:       getEnvString("DATA_DIR", "data"),
		VacanciesFile: getEnvString("VACANCIES_FILE", "vacancies.json"),

		HHAPIBaseURL:   getEnvString("HH_API_BASE_URL", "https://api.hh.ru/vacancies"),
		HHUserAgent:    getEnvString("HH_USER_AGENT", "HH-User-Agent"),
		HHAPITimeout:   getEnvDuration("HH_API_TIMEOUT", 30*time.Second),
		HHPages:        getEnvInt("HH_PAGES", 20),
		HHPerPage:      getEnvInt("HH_PER_PAGE", 100),
		HHFetchWorkers: getEnvInt("HH_FETCH_WORKERS", 1),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),

		ArchiveEnabled:         getEnvBool("ARCHIVE_ENABLED", false),
		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseDialTimeout:  getEnvDuration("CLICKHOUSE_DIAL_TIMEOUT", 30*time.Second),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "vacancyhub"),

		OTelCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
		LogDevelopment:   getEnvBool("LOG_DEVELOPMENT", false),
	}

	return config, nil
}

// VacanciesFilePath is where the JSON store keeps its working set.
func (c *Config) VacanciesFilePath() string {
	return filepath.Join(c.DataDir, c.VacanciesFile)
}

func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
