package models

// RawVacancy is one element of the HH search response "items" array. Pointer
// fields distinguish a missing key or JSON null from an empty value.
type RawVacancy struct {
	ID           string      `json:"id,omitempty"`
	Name         *string     `json:"name"`
	AlternateURL *string     `json:"alternate_url"`
	Salary       *RawSalary  `json:"salary"`
	Snippet      *RawSnippet `json:"snippet,omitempty"`
	Area         *RawArea    `json:"area"`
}

type RawSalary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency,omitempty"`
}

type RawSnippet struct {
	Requirement    *string `json:"requirement"`
	Responsibility *string `json:"responsibility"`
}

type RawArea struct {
	ID   string  `json:"id,omitempty"`
	Name *string `json:"name"`
}

type SearchPage struct {
	Items   []RawVacancy `json:"items"`
	Found   int          `json:"found"`
	Pages   int          `json:"pages"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}
