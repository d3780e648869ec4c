package events

import (
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"
)

const (
	APISubjects = "vacancies.api.>"
	QueueGroup  = "vacancies-service"

	IngestSubject  = "vacancies.api.ingest"
	AddSubject     = "vacancies.api.add"
	ImportSubject  = "vacancies.api.import"
	QuerySubject   = "vacancies.api.query"
	DeleteSubject  = "vacancies.api.delete"
	ListSubject    = "vacancies.api.list"
	ArchiveSubject = "vacancies.api.archive"
)

type IngestRequest struct {
	Keyword string `json:"keyword"`
}

type AddRequest struct {
	Vacancies []models.Vacancy `json:"vacancies"`
}

type DeleteRequest struct {
	Vacancy models.Vacancy `json:"vacancy"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type VacanciesResponse struct {
	Vacancies []models.Vacancy `json:"vacancies"`
}

type ErrorBody struct {
	Type    errors.ErrorType `json:"type"`
	Message string           `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func newErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Type:    errors.TypeOf(err),
		Message: err.Error(),
	}}
}
