package processor_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"
	"vacancyhub/services/vacancies/internal/processor"
	"vacancyhub/services/vacancies/internal/query"
	"vacancyhub/services/vacancies/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	records  []models.RawVacancy
	err      error
	keywords []string
}

func (f *fakeFetcher) FetchVacancies(_ context.Context, keyword string) ([]models.RawVacancy, error) {
	f.keywords = append(f.keywords, keyword)
	return f.records, f.err
}

type fakeArchiver struct {
	archived []models.Vacancy
	err      error
}

func (f *fakeArchiver) ArchiveVacancies(_ context.Context, vacancies []models.Vacancy) error {
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, vacancies...)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func rawVacancy(name, url string, from *int, city string) models.RawVacancy {
	r := models.RawVacancy{
		Name:         ptr(name),
		AlternateURL: ptr(url),
		Area:         &models.RawArea{Name: ptr(city)},
	}
	if from != nil {
		r.Salary = &models.RawSalary{From: from}
	}
	return r
}

func newProcessor(t *testing.T, fetcher processor.Fetcher, archiver processor.Archiver) *processor.VacancyProcessor {
	t.Helper()

	store, err := storage.NewJSONStore(context.Background(), filepath.Join(t.TempDir(), "vacancies.json"), zap.NewNop())
	require.NoError(t, err)

	return processor.NewVacancyProcessor(zap.NewNop(), fetcher, store, archiver)
}

func TestIngest_FetchConvertStore(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.RawVacancy{
		rawVacancy("Go Developer", "u1", ptr(300000), "Москва"),
		rawVacancy("Python Developer", "u2", nil, "Казань"),
	}}
	p := newProcessor(t, fetcher, nil)
	ctx := context.Background()

	count, err := p.Ingest(ctx, "developer")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"developer"}, fetcher.keywords)

	all, err := p.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{
		models.NewVacancy("Go Developer", "u1", 300000, 0, "", "", "Москва"),
		models.NewVacancy("Python Developer", "u2", 0, 0, "", "", "Казань"),
	}, all)
}

func TestIngest_FetchErrorPropagates(t *testing.T) {
	boom := errors.Network("fetching page 0", stderrors.New("timeout"))
	p := newProcessor(t, &fakeFetcher{err: boom}, nil)

	_, err := p.Ingest(context.Background(), "go")
	assert.ErrorIs(t, err, boom)

	all, err := p.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIngest_MissingFieldStoresNothing(t *testing.T) {
	broken := rawVacancy("No City", "u2", nil, "")
	broken.Area = nil
	fetcher := &fakeFetcher{records: []models.RawVacancy{
		rawVacancy("Fine", "u1", nil, "C"),
		broken,
	}}
	p := newProcessor(t, fetcher, nil)

	_, err := p.Ingest(context.Background(), "go")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingField))

	all, err := p.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportRecords(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)
	ctx := context.Background()

	count, err := p.ImportRecords(ctx, []byte(`[
		{"name": "Go Developer", "alternate_url": "u1", "salary": {"from": 1000, "to": null}, "area": {"name": "C"}},
		{"name": "QA", "alternate_url": "u2", "salary": null, "snippet": {"requirement": "tests"}, "area": {"name": "C"}}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := p.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{
		models.NewVacancy("Go Developer", "u1", 1000, 0, "", "", "C"),
		models.NewVacancy("QA", "u2", 0, 0, "tests", "", "C"),
	}, all)
}

func TestImportRecords_Malformed(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)

	_, err := p.ImportRecords(context.Background(), []byte(`[{"name": `))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParse))
}

func TestQuery_EndToEndScenario(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)
	ctx := context.Background()

	x := models.NewVacancy("X", "u1", 1000, 2000, "", "", "C1")
	y := models.NewVacancy("Y", "u2", 500, 900, "", "", "C2")
	require.NoError(t, p.AddVacancies(ctx, []models.Vacancy{x, y}))

	got, err := p.Query(ctx, query.Params{Keywords: []string{"y"}, TopN: 10})
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{y}, got)

	got, err = p.Query(ctx, query.Params{DesiredSalary: 600, TopN: 10})
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{x}, got)
}

func TestQuery_VacancyMatchingSeveralKeywordsAppearsOnce(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)
	ctx := context.Background()

	both := models.NewVacancy("Go / Kotlin Backend", "u1", 100, 0, "", "", "C")
	require.NoError(t, p.AddVacancies(ctx, []models.Vacancy{both}))

	got, err := p.Query(ctx, query.Params{Keywords: []string{"go", "kotlin", "backend"}, TopN: 10})
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{both}, got)
}

func TestDeleteVacancy(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)
	ctx := context.Background()

	a := models.NewVacancy("A", "ua", 1, 2, "", "", "C")
	b := models.NewVacancy("B", "ub", 3, 4, "", "", "C")
	require.NoError(t, p.AddVacancies(ctx, []models.Vacancy{a, a, b}))

	removed, err := p.DeleteVacancy(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = p.DeleteVacancy(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, removed)

	all, err := p.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{b}, all)
}

func TestReset_DiscardsPreviousIngest(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.RawVacancy{rawVacancy("python dev", "u1", nil, "C")}}
	p := newProcessor(t, fetcher, nil)
	ctx := context.Background()

	_, err := p.Ingest(ctx, "python")
	require.NoError(t, err)
	require.NoError(t, p.Reset(ctx))

	fetcher.records = []models.RawVacancy{rawVacancy("java dev", "u2", nil, "C")}
	_, err = p.Ingest(ctx, "java")
	require.NoError(t, err)

	got, err := p.Query(ctx, query.Params{TopN: 10})
	require.NoError(t, err)
	assert.Equal(t, []models.Vacancy{models.NewVacancy("java dev", "u2", 0, 0, "", "", "C")}, got)
}

func TestArchive(t *testing.T) {
	archiver := &fakeArchiver{}
	p := newProcessor(t, &fakeFetcher{}, archiver)
	ctx := context.Background()

	a := models.NewVacancy("A", "ua", 1, 2, "", "", "C")
	require.NoError(t, p.AddVacancies(ctx, []models.Vacancy{a}))

	count, err := p.Archive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []models.Vacancy{a}, archiver.archived)
}

func TestArchive_NotConfigured(t *testing.T) {
	p := newProcessor(t, &fakeFetcher{}, nil)

	_, err := p.Archive(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnavailable))
}

func TestArchive_ErrorPropagates(t *testing.T) {
	boom := stderrors.New("clickhouse down")
	p := newProcessor(t, &fakeFetcher{}, &fakeArchiver{err: boom})

	_, err := p.Archive(context.Background())
	assert.ErrorIs(t, err, boom)
}
