package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("vacancyhub/vacancies/storage")

// JSONStore keeps vacancies as a JSON array in a single file. Every operation
// reads the whole file, changes it in memory and writes the whole file back.
//
// JSONStore does no locking. Concurrent callers on the same file race and the
// last writer wins; callers must serialize access themselves.
type JSONStore struct {
	path   string
	logger *zap.Logger
}

// NewJSONStore truncates the file at path to an empty array, creating it and
// its parent directory if needed. Prior contents are always discarded.
func NewJSONStore(ctx context.Context, path string, logger *zap.Logger) (*JSONStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.FileAccess("creating data directory", err)
		}
	}

	s := &JSONStore{
		path:   path,
		logger: logger,
	}
	if err := s.Reset(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset empties the working set.
func (s *JSONStore) Reset(ctx context.Context) error {
	_, span := tracer.Start(ctx, "JSONStore.Reset")
	defer span.End()
	span.SetAttributes(telemetry.String("store.path", s.path))

	if err := s.writeAll(nil); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Debug("vacancy store reset", zap.String("path", s.path))
	return nil
}

// validText rejects strings that would not survive a JSON round trip:
// encoding/json replaces invalid UTF-8 with U+FFFD.
func validText(v models.Vacancy) error {
	fields := []struct{ name, value string }{
		{"title", v.Title},
		{"url", v.URL},
		{"requirements", v.Requirements},
		{"responsibility", v.Responsibility},
		{"city", v.City},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s is not valid UTF-8", f.name)
		}
	}
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) Add(ctx context.Context, vacancies []models.Vacancy) error {
	_, span := tracer.Start(ctx, "JSONStore.Add")
	defer span.End()
	span.SetAttributes(telemetry.Int("vacancies.count", len(vacancies)))

	for i, v := range vacancies {
		if err := validText(v); err != nil {
			span.RecordError(err)
			return errors.InvalidInput(fmt.Sprintf("vacancy %d", i), err)
		}
	}

	stored, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, v := range vacancies {
		stored = append(stored, newRecord(v))
	}

	if err := s.writeAll(stored); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Debug("added vacancies",
		zap.Int("added", len(vacancies)),
		zap.Int("total", len(stored)))
	return nil
}

// SelectByKeyword returns every stored vacancy whose title contains keyword,
// ignoring case, in file order.
func (s *JSONStore) SelectByKeyword(ctx context.Context, keyword string) ([]models.Vacancy, error) {
	_, span := tracer.Start(ctx, "JSONStore.SelectByKeyword")
	defer span.End()
	span.SetAttributes(telemetry.String("store.keyword", keyword))

	stored, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	needle := strings.ToLower(keyword)
	selected := make([]models.Vacancy, 0)
	for _, r := range stored {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			selected = append(selected, r.toVacancy())
		}
	}

	span.SetAttributes(telemetry.Int("vacancies.count", len(selected)))
	return selected, nil
}

// Delete removes every record equal to vacancy in all seven fields and reports
// how many were removed. Removing nothing is not an error.
func (s *JSONStore) Delete(ctx context.Context, vacancy models.Vacancy) (int, error) {
	_, span := tracer.Start(ctx, "JSONStore.Delete")
	defer span.End()

	stored, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	survivors := make([]record, 0, len(stored))
	for _, r := range stored {
		if r.toVacancy() != vacancy {
			survivors = append(survivors, r)
		}
	}

	removed := len(stored) - len(survivors)
	span.SetAttributes(telemetry.Int("vacancies.removed", removed))
	if removed == 0 {
		return 0, nil
	}

	if err := s.writeAll(survivors); err != nil {
		span.RecordError(err)
		return 0, err
	}

	s.logger.Debug("deleted vacancies",
		zap.String("title", vacancy.Title),
		zap.String("url", vacancy.URL),
		zap.Int("removed", removed))
	return removed, nil
}

func (s *JSONStore) ListAll(ctx context.Context) ([]models.Vacancy, error) {
	_, span := tracer.Start(ctx, "JSONStore.ListAll")
	defer span.End()

	stored, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	vacancies := make([]models.Vacancy, len(stored))
	for i, r := range stored {
		vacancies[i] = r.toVacancy()
	}

	span.SetAttributes(telemetry.Int("vacancies.count", len(vacancies)))
	return vacancies, nil
}

func (s *JSONStore) readAll() ([]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.FileAccess("reading vacancies file", err)
	}

	var stored []record
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Parse("decoding vacancies file", err)
	}
	return stored, nil
}

func (s *JSONStore) writeAll(stored []record) error {
	if stored == nil {
		stored = []record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(stored); err != nil {
		return errors.Internal("encoding vacancies", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return errors.FileAccess("writing vacancies file", err)
	}
	return nil
}

type record struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	SalaryFrom     salary `json:"salary_from"`
	SalaryTo       salary `json:"salary_to"`
	Requirements   string `json:"requirements"`
	Responsibility string `json:"responsibility"`
	City           string `json:"city"`
}

func newRecord(v models.Vacancy) record {
	return record{
		Title:          v.Title,
		URL:            v.URL,
		SalaryFrom:     salary(v.SalaryFrom),
		SalaryTo:       salary(v.SalaryTo),
		Requirements:   v.Requirements,
		Responsibility: v.Responsibility,
		City:           v.City,
	}
}

func (r record) toVacancy() models.Vacancy {
	return models.Vacancy{
		Title:          r.Title,
		URL:            r.URL,
		SalaryFrom:     int(r.SalaryFrom),
		SalaryTo:       int(r.SalaryTo),
		Requirements:   r.Requirements,
		Responsibility: r.Responsibility,
		City:           r.City,
	}
}

// salary is written as a JSON number. On read it also accepts a numeric
// string and null (as 0), which older files contain.
type salary int

func (s *salary) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*s = 0
			return nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return err
		}
		*s = salary(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = salary(n)
	return nil
}
