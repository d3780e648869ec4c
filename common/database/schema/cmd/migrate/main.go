package main

import (
	"context"
	"log"
	"os"

	"vacancyhub/common/database"
	"vacancyhub/common/database/schema"
	"vacancyhub/common/database/schema/migrations"

	"go.uber.org/zap"
)

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, database.Options{
		DSN:      getEnvString("CLICKHOUSE_DSN", "127.0.0.1:9000"),
		Username: getEnvString("CLICKHOUSE_USERNAME", "default"),
		Password: getEnvString("CLICKHOUSE_PASSWORD", ""),
		Database: getEnvString("CLICKHOUSE_DATABASE", "vacancyhub"),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if len(os.Args) > 1 && os.Args[1] == "down" {
		for i := len(migrations.All) - 1; i >= 0; i-- {
			migration := migrations.All[i]
			if err := migrator.RollbackMigration(ctx, migration); err != nil {
				logger.Fatal("Failed to rollback migration",
					zap.Int("version", migration.Version),
					zap.Error(err),
				)
			}
			logger.Info("Rolled back migration", zap.Int("version", migration.Version))
		}
		return
	}

	if err := migrator.Migrate(ctx, migrations.All); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	logger.Info("All migrations completed successfully")
}
