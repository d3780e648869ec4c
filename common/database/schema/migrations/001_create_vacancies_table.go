package migrations

import "vacancyhub/common/database/schema"

// CreateVacanciesTable keys rows by id alone, so archiving the same vacancy
// again collapses into the row with the latest archived_at on merge.
var CreateVacanciesTable = schema.Migration{
	Version:     1,
	Description: "Create vacancies table",
	Up: `
		CREATE TABLE IF NOT EXISTS vacancies (
			id UUID,
			title String,
			url String,
			salary_from UInt64,
			salary_to UInt64,
			requirements String,
			responsibility String,
			city String,
			archived_at DateTime
		) ENGINE = ReplacingMergeTree(archived_at)
		ORDER BY id
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS vacancies`,
}

// All lists every migration in version order.
var All = []schema.Migration{
	CreateVacanciesTable,
}
