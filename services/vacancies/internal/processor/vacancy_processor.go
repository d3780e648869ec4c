package processor

import (
	"context"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"
	"vacancyhub/services/vacancies/internal/parser"
	"vacancyhub/services/vacancies/internal/query"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Fetcher interface {
	FetchVacancies(ctx context.Context, keyword string) ([]models.RawVacancy, error)
}

type Store interface {
	Reset(ctx context.Context) error
	Add(ctx context.Context, vacancies []models.Vacancy) error
	SelectByKeyword(ctx context.Context, keyword string) ([]models.Vacancy, error)
	Delete(ctx context.Context, vacancy models.Vacancy) (int, error)
	ListAll(ctx context.Context) ([]models.Vacancy, error)
}

type Archiver interface {
	ArchiveVacancies(ctx context.Context, vacancies []models.Vacancy) error
}

// VacancyProcessor is not safe for concurrent use; it inherits the store's
// single-caller contract.
type VacancyProcessor struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	fetcher  Fetcher
	store    Store
	archiver Archiver
}

// NewVacancyProcessor wires the processor. archiver may be nil, in which case
// Archive reports UNAVAILABLE.
func NewVacancyProcessor(logger *zap.Logger, fetcher Fetcher, store Store, archiver Archiver) *VacancyProcessor {
	return &VacancyProcessor{
		logger:   logger,
		tracer:   telemetry.GetTracer("vacancyhub/vacancies/processor"),
		fetcher:  fetcher,
		store:    store,
		archiver: archiver,
	}
}

// Ingest fetches every record for keyword, converts the batch and appends it
// to the store. It returns the number of vacancies added.
func (p *VacancyProcessor) Ingest(ctx context.Context, keyword string) (int, error) {
	ctx, span := p.tracer.Start(ctx, "Ingest")
	defer span.End()
	span.SetAttributes(telemetry.String("ingest.keyword", keyword))

	records, err := p.fetcher.FetchVacancies(ctx, keyword)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to fetch vacancies", zap.String("keyword", keyword), zap.Error(err))
		return 0, err
	}

	vacancies, err := parser.CreateVacancies(records)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to convert vacancies", zap.String("keyword", keyword), zap.Error(err))
		return 0, err
	}

	if err := p.AddVacancies(ctx, vacancies); err != nil {
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(telemetry.Int("ingest.count", len(vacancies)))
	p.logger.Info("ingested vacancies",
		zap.String("keyword", keyword),
		zap.Int("count", len(vacancies)))
	return len(vacancies), nil
}

// ImportRecords converts a JSON array of raw source records, as the source
// API returns them in "items", and appends the batch to the store.
func (p *VacancyProcessor) ImportRecords(ctx context.Context, data []byte) (int, error) {
	ctx, span := p.tracer.Start(ctx, "ImportRecords")
	defer span.End()
	span.SetAttributes(telemetry.Int("message.size", len(data)))

	records, err := parser.DecodeRecords(data)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	vacancies, err := parser.CreateVacancies(records)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to convert imported records", zap.Error(err))
		return 0, err
	}

	if err := p.AddVacancies(ctx, vacancies); err != nil {
		span.RecordError(err)
		return 0, err
	}

	p.logger.Info("imported vacancies", zap.Int("count", len(vacancies)))
	return len(vacancies), nil
}

func (p *VacancyProcessor) AddVacancies(ctx context.Context, vacancies []models.Vacancy) error {
	if err := p.store.Add(ctx, vacancies); err != nil {
		p.logger.Error("failed to store vacancies", zap.Int("count", len(vacancies)), zap.Error(err))
		return err
	}
	return nil
}

func (p *VacancyProcessor) Query(ctx context.Context, params query.Params) ([]models.Vacancy, error) {
	result, err := query.Run(ctx, p.store, params)
	if err != nil {
		p.logger.Error("query failed", zap.Strings("keywords", params.Keywords), zap.Error(err))
		return nil, err
	}

	p.logger.Debug("query completed",
		zap.Strings("keywords", params.Keywords),
		zap.Int("desired_salary", params.DesiredSalary),
		zap.Int("top_n", params.TopN),
		zap.Int("results", len(result)))
	return result, nil
}

func (p *VacancyProcessor) DeleteVacancy(ctx context.Context, vacancy models.Vacancy) (int, error) {
	removed, err := p.store.Delete(ctx, vacancy)
	if err != nil {
		p.logger.Error("failed to delete vacancy", zap.String("url", vacancy.URL), zap.Error(err))
		return 0, err
	}
	return removed, nil
}

// Reset discards the working set so the next ingest starts from nothing.
func (p *VacancyProcessor) Reset(ctx context.Context) error {
	if err := p.store.Reset(ctx); err != nil {
		p.logger.Error("failed to reset vacancy store", zap.Error(err))
		return err
	}
	return nil
}

func (p *VacancyProcessor) ListAll(ctx context.Context) ([]models.Vacancy, error) {
	return p.store.ListAll(ctx)
}

// Archive copies the current working set to the archive and returns how many
// vacancies were written.
func (p *VacancyProcessor) Archive(ctx context.Context) (int, error) {
	ctx, span := p.tracer.Start(ctx, "Archive")
	defer span.End()

	if p.archiver == nil {
		return 0, errors.Unavailable("archive is not configured", nil)
	}

	vacancies, err := p.store.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	if err := p.archiver.ArchiveVacancies(ctx, vacancies); err != nil {
		span.RecordError(err)
		return 0, err
	}
	return len(vacancies), nil
}
