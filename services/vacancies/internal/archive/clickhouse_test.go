package archive

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type execCall struct {
	query string
	args  []any
}

type fakeConn struct {
	calls  []execCall
	failAt int
}

func (f *fakeConn) Exec(_ context.Context, query string, args ...any) error {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if len(f.calls) == f.failAt {
		return stderrors.New("connection lost")
	}
	return nil
}

func TestArchiveVacancies_InsertsRows(t *testing.T) {
	conn := &fakeConn{}
	a := NewClickHouseArchive(conn, zap.NewNop())
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	v := models.NewVacancy("Go Developer", "https://hh.ru/vacancy/1", 1000, 2000, "req", "resp", "Москва")
	require.NoError(t, a.ArchiveVacancies(context.Background(), []models.Vacancy{v}))

	require.Len(t, conn.calls, 1)
	assert.Contains(t, conn.calls[0].query, "INSERT INTO vacancies")
	assert.Equal(t, []any{
		VacancyID(v), "Go Developer", "https://hh.ru/vacancy/1", uint64(1000), uint64(2000),
		"req", "resp", "Москва", fixed,
	}, conn.calls[0].args)
}

func TestArchiveVacancies_StopsOnError(t *testing.T) {
	conn := &fakeConn{failAt: 2}
	a := NewClickHouseArchive(conn, zap.NewNop())

	vacancies := []models.Vacancy{
		models.NewVacancy("A", "ua", 0, 0, "", "", "C"),
		models.NewVacancy("B", "ub", 0, 0, "", "", "C"),
		models.NewVacancy("C", "uc", 0, 0, "", "", "C"),
	}

	err := a.ArchiveVacancies(context.Background(), vacancies)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnavailable))
	assert.Len(t, conn.calls, 2)
}

func TestVacancyID_Deterministic(t *testing.T) {
	a := models.NewVacancy("A", "u", 1, 2, "r", "s", "C")
	same := models.NewVacancy("A", "u", 1, 2, "r", "s", "C")

	assert.Equal(t, VacancyID(a), VacancyID(same))
	assert.Equal(t, uint8(5), uint8(VacancyID(a).Version()))
}

func TestVacancyID_DistinctForEveryField(t *testing.T) {
	base := models.NewVacancy("A", "u", 1, 2, "r", "s", "C")

	variants := map[string]models.Vacancy{
		"title":          models.NewVacancy("B", "u", 1, 2, "r", "s", "C"),
		"url":            models.NewVacancy("A", "v", 1, 2, "r", "s", "C"),
		"salary_from":    models.NewVacancy("A", "u", 3, 2, "r", "s", "C"),
		"salary_to":      models.NewVacancy("A", "u", 1, 4, "r", "s", "C"),
		"requirements":   models.NewVacancy("A", "u", 1, 2, "x", "s", "C"),
		"responsibility": models.NewVacancy("A", "u", 1, 2, "r", "x", "C"),
		"city":           models.NewVacancy("A", "u", 1, 2, "r", "s", "D"),
	}

	for field, v := range variants {
		t.Run(field, func(t *testing.T) {
			assert.NotEqual(t, VacancyID(base), VacancyID(v))
		})
	}
}

func TestVacancyID_FieldBoundariesAreUnambiguous(t *testing.T) {
	a := models.NewVacancy("A|u", "", 0, 0, "", "", "C")
	b := models.NewVacancy("A", "|u", 0, 0, "", "", "C")

	assert.NotEqual(t, VacancyID(a), VacancyID(b))
}
