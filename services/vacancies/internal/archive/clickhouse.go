package archive

import (
	"context"
	"fmt"
	"time"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("vacancyhub/vacancies/archive")

var vacancyNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

const insertVacancyQuery = `
	INSERT INTO vacancies (
		id, title, url, salary_from, salary_to,
		requirements, responsibility, city, archived_at
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?
	)
`

// Execer is the part of clickhouse.Conn the archive needs.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

type ClickHouseArchive struct {
	conn   Execer
	logger *zap.Logger
	now    func() time.Time
}

func NewClickHouseArchive(conn Execer, logger *zap.Logger) *ClickHouseArchive {
	return &ClickHouseArchive{
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

// VacancyID derives a stable id from all seven fields. Equal vacancies share
// an id, so archiving one again replaces its earlier row once ClickHouse
// merges; vacancies differing in any field get distinct rows.
func VacancyID(v models.Vacancy) uuid.UUID {
	key := fmt.Sprintf("%q|%q|%d|%d|%q|%q|%q",
		v.Title, v.URL, v.SalaryFrom, v.SalaryTo, v.Requirements, v.Responsibility, v.City)
	return uuid.NewSHA1(vacancyNamespace, []byte(key))
}

func (a *ClickHouseArchive) ArchiveVacancies(ctx context.Context, vacancies []models.Vacancy) error {
	ctx, span := tracer.Start(ctx, "ArchiveVacancies")
	defer span.End()
	span.SetAttributes(telemetry.Int("vacancies.count", len(vacancies)))

	archivedAt := a.now().UTC()
	for _, v := range vacancies {
		if err := a.conn.Exec(ctx, insertVacancyQuery,
			VacancyID(v),
			v.Title,
			v.URL,
			uint64(v.SalaryFrom),
			uint64(v.SalaryTo),
			v.Requirements,
			v.Responsibility,
			v.City,
			archivedAt,
		); err != nil {
			span.RecordError(err)
			a.logger.Error("failed to archive vacancy",
				zap.String("url", v.URL),
				zap.Error(err))
			return errors.Unavailable("inserting vacancy", err)
		}
	}

	a.logger.Info("archived vacancies", zap.Int("count", len(vacancies)))
	return nil
}
