package archive

import (
	"context"

	"vacancyhub/common/database"
	"vacancyhub/services/vacancies/internal/config"
	"vacancyhub/services/vacancies/internal/errors"

	"go.uber.org/zap"
)

// Connect opens the ClickHouse database named by cfg. Connection failures
// are reported as UNAVAILABLE.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.Database, error) {
	db, err := database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		DialTimeout:     cfg.ClickHouseDialTimeout,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to ClickHouse",
			zap.String("dsn", cfg.ClickHouseDSN),
			zap.Error(err))
		return nil, errors.Unavailable("connecting to archive", err)
	}
	return db, nil
}
