package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vacancyhub/services/vacancies/internal/api"
	"vacancyhub/services/vacancies/internal/archive"
	"vacancyhub/services/vacancies/internal/cli"
	"vacancyhub/services/vacancies/internal/config"
	"vacancyhub/services/vacancies/internal/processor"
	"vacancyhub/services/vacancies/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.LogDevelopment {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewJSONStore(ctx, cfg.VacanciesFilePath(), logger)
	if err != nil {
		logger.Fatal("failed to prepare vacancy store", zap.Error(err))
	}
	logger.Info("vacancy store ready", zap.String("path", store.Path()))

	var archiver processor.Archiver
	if cfg.ArchiveEnabled {
		db, err := archive.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to ClickHouse", zap.Error(err))
		}
		defer db.Close()
		archiver = archive.NewClickHouseArchive(db.Conn(), logger)
	}

	client := api.NewVacancySourceClient(logger, cfg)
	vacancyProcessor := processor.NewVacancyProcessor(logger, client, store, archiver)

	app := cli.NewApp(logger, vacancyProcessor, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("console session failed", zap.Error(err))
	}
}
