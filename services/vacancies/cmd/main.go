package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vacancyhub/common/database/schema"
	"vacancyhub/common/database/schema/migrations"
	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/api"
	"vacancyhub/services/vacancies/internal/archive"
	"vacancyhub/services/vacancies/internal/config"
	"vacancyhub/services/vacancies/internal/events"
	"vacancyhub/services/vacancies/internal/messaging"
	"vacancyhub/services/vacancies/internal/processor"
	"vacancyhub/services/vacancies/internal/storage"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "vacancies-service"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newNATSConnection(cfg *config.Config, lc fx.Lifecycle) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name(serviceName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			nc.Close()
			return nil
		},
	})
	return nc, nil
}

func newStore(cfg *config.Config, logger *zap.Logger) (*storage.JSONStore, error) {
	return storage.NewJSONStore(context.Background(), cfg.VacanciesFilePath(), logger)
}

// newArchiver returns a nil Archiver when archiving is disabled.
func newArchiver(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (processor.Archiver, error) {
	if !cfg.ArchiveEnabled {
		logger.Info("ClickHouse archive disabled")
		return nil, nil
	}

	ctx := context.Background()
	db, err := archive.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := schema.NewMigrator(db.Conn(), logger).Migrate(ctx, migrations.All); err != nil {
		_ = db.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return archive.NewClickHouseArchive(db.Conn(), logger), nil
}

func newProcessor(logger *zap.Logger, client api.VacancySourceClient, store *storage.JSONStore, archiver processor.Archiver) *processor.VacancyProcessor {
	return processor.NewVacancyProcessor(logger, client, store, archiver)
}

func newService(p *processor.VacancyProcessor) events.Service {
	return p
}

func newTracer() trace.Tracer {
	return telemetry.GetTracer("vacancyhub/vacancies")
}

func startTelemetry(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) error {
	if cfg.OTelCollectorURL == "" {
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTelCollectorURL)
	if err != nil {
		return err
	}
	logger.Info("Tracing enabled", zap.String("collector", cfg.OTelCollectorURL))

	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newStore,
			api.NewVacancySourceClient,
			newArchiver,
			newProcessor,
			newService,
			messaging.NewPublisher,
			events.NewHandler,
			newTracer,
		),
		fx.Invoke(
			startTelemetry,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
			func(publisher messaging.Publisher, lc fx.Lifecycle) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						publisher.Close()
						return nil
					},
				})
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
