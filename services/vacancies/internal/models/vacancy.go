package models

import (
	"fmt"
	"strings"
)

// Vacancy is one job posting. It is comparable: two values are equal iff all
// seven fields are equal, so it can be used directly as a map key.
type Vacancy struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	SalaryFrom     int    `json:"salary_from"`
	SalaryTo       int    `json:"salary_to"`
	Requirements   string `json:"requirements"`
	Responsibility string `json:"responsibility"`
	City           string `json:"city"`
}

func NewVacancy(title, url string, salaryFrom, salaryTo int, requirements, responsibility, city string) Vacancy {
	return Vacancy{
		Title:          title,
		URL:            url,
		SalaryFrom:     nonNegative(salaryFrom),
		SalaryTo:       nonNegative(salaryTo),
		Requirements:   requirements,
		Responsibility: responsibility,
		City:           city,
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (v Vacancy) Equal(other Vacancy) bool {
	return v == other
}

// Compare orders by SalaryFrom, higher first. It returns a negative number
// when v sorts before other and zero for equal SalaryFrom.
func (v Vacancy) Compare(other Vacancy) int {
	switch {
	case v.SalaryFrom > other.SalaryFrom:
		return -1
	case v.SalaryFrom < other.SalaryFrom:
		return 1
	default:
		return 0
	}
}

func (v Vacancy) SalaryString() string {
	switch {
	case v.SalaryFrom > 0 && v.SalaryTo > 0:
		return formatNumber(v.SalaryFrom) + " - " + formatNumber(v.SalaryTo)
	case v.SalaryFrom > 0:
		return "от " + formatNumber(v.SalaryFrom)
	case v.SalaryTo > 0:
		return "до " + formatNumber(v.SalaryTo)
	default:
		return "не указана"
	}
}

func (v Vacancy) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.Title)
	fmt.Fprintf(&b, "Город: %s\n", v.City)
	fmt.Fprintf(&b, "Зарплата: %s\n", v.SalaryString())
	if v.Requirements != "" {
		fmt.Fprintf(&b, "Требования: %s\n", v.Requirements)
	}
	if v.Responsibility != "" {
		fmt.Fprintf(&b, "Обязанности: %s\n", v.Responsibility)
	}
	fmt.Fprintf(&b, "Ссылка: %s", v.URL)
	return b.String()
}

// formatNumber separates thousands with spaces: 1234567 -> "1 234 567".
func formatNumber(num int) string {
	if num >= 1000 {
		return formatNumber(num/1000) + " " + fmt.Sprintf("%03d", num%1000)
	}
	return fmt.Sprintf("%d", num)
}
