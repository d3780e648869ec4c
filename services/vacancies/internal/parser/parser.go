package parser

import (
	"encoding/json"
	"fmt"

	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"
)

// CreateVacancies converts raw source records into vacancies, keeping input
// order. A record missing name, alternate_url or area.name fails the whole
// batch.
func CreateVacancies(records []models.RawVacancy) ([]models.Vacancy, error) {
	vacancies := make([]models.Vacancy, 0, len(records))

	for i, record := range records {
		vacancy, err := createVacancy(record)
		if err != nil {
			return nil, errors.MissingField(fmt.Sprintf("record %d", i), err)
		}
		vacancies = append(vacancies, vacancy)
	}

	return vacancies, nil
}

func createVacancy(record models.RawVacancy) (models.Vacancy, error) {
	if record.Name == nil {
		return models.Vacancy{}, fmt.Errorf("missing field %q", "name")
	}
	if record.AlternateURL == nil {
		return models.Vacancy{}, fmt.Errorf("missing field %q", "alternate_url")
	}
	if record.Area == nil || record.Area.Name == nil {
		return models.Vacancy{}, fmt.Errorf("missing field %q", "area.name")
	}

	var salaryFrom, salaryTo int
	if record.Salary != nil {
		salaryFrom = intOrZero(record.Salary.From)
		salaryTo = intOrZero(record.Salary.To)
	}

	var requirements, responsibility string
	if record.Snippet != nil {
		requirements = stringOrEmpty(record.Snippet.Requirement)
		responsibility = stringOrEmpty(record.Snippet.Responsibility)
	}

	return models.NewVacancy(
		*record.Name,
		*record.AlternateURL,
		salaryFrom,
		salaryTo,
		requirements,
		responsibility,
		*record.Area.Name,
	), nil
}

// DecodeRecords decodes a JSON array of raw source records.
func DecodeRecords(data []byte) ([]models.RawVacancy, error) {
	var records []models.RawVacancy
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Parse("decoding raw vacancy records", err)
	}
	return records, nil
}

func intOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
