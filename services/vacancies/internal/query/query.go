package query

import (
	"context"
	"slices"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/models"
)

var tracer = telemetry.GetTracer("vacancyhub/vacancies/query")

type Selector interface {
	SelectByKeyword(ctx context.Context, keyword string) ([]models.Vacancy, error)
	ListAll(ctx context.Context) ([]models.Vacancy, error)
}

type Params struct {
	Keywords      []string `json:"keywords"`
	DesiredSalary int      `json:"desired_salary"`
	TopN          int      `json:"top_n"`
}

// Run selects candidates by keyword (or everything when there are no
// keywords), drops those below DesiredSalary, sorts by SalaryFrom descending
// and keeps the first TopN.
func Run(ctx context.Context, selector Selector, params Params) ([]models.Vacancy, error) {
	ctx, span := tracer.Start(ctx, "query.Run")
	defer span.End()
	span.SetAttributes(
		telemetry.Strings("query.keywords", params.Keywords),
		telemetry.Int("query.desired_salary", params.DesiredSalary),
		telemetry.Int("query.top_n", params.TopN),
	)

	candidates, err := selectCandidates(ctx, selector, params.Keywords)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := Top(SortBySalary(FilterBySalary(candidates, params.DesiredSalary)), params.TopN)

	span.SetAttributes(
		telemetry.Int("query.candidates", len(candidates)),
		telemetry.Int("query.results", len(result)),
	)
	return result, nil
}

func selectCandidates(ctx context.Context, selector Selector, keywords []string) ([]models.Vacancy, error) {
	if len(keywords) == 0 {
		all, err := selector.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return Union(all), nil
	}

	groups := make([][]models.Vacancy, 0, len(keywords))
	for _, keyword := range keywords {
		selected, err := selector.SelectByKeyword(ctx, keyword)
		if err != nil {
			return nil, err
		}
		groups = append(groups, selected)
	}
	return Union(groups...), nil
}

// Union merges the groups into one list with no two equal vacancies,
// keeping the first occurrence in encounter order.
func Union(groups ...[]models.Vacancy) []models.Vacancy {
	seen := make(map[models.Vacancy]struct{})
	result := make([]models.Vacancy, 0)

	for _, group := range groups {
		for _, v := range group {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// FilterBySalary keeps vacancies with SalaryFrom >= desired. SalaryTo is not
// consulted.
func FilterBySalary(vacancies []models.Vacancy, desired int) []models.Vacancy {
	result := make([]models.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if desired <= v.SalaryFrom {
			result = append(result, v)
		}
	}
	return result
}

// SortBySalary returns a copy sorted by SalaryFrom descending. Ties keep their
// input order.
func SortBySalary(vacancies []models.Vacancy) []models.Vacancy {
	sorted := slices.Clone(vacancies)
	slices.SortStableFunc(sorted, models.Vacancy.Compare)
	return sorted
}

func Top(vacancies []models.Vacancy, n int) []models.Vacancy {
	if n <= 0 {
		return []models.Vacancy{}
	}
	if n > len(vacancies) {
		n = len(vacancies)
	}
	return vacancies[:n]
}
