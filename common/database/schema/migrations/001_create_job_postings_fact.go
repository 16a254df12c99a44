package migrations

import "github.com/Parthraj1905/data-nerd/common/database/schema"

var CreateJobPostingsFact = schema.Migration{
	Version:     1,
	Description: "Create job_postings_fact table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_postings_fact (
			job_id UInt64,
			company_id UInt64,
			job_title_short LowCardinality(String),
			job_title String,
			job_location String,
			job_schedule_type LowCardinality(String),
			job_work_from_home Bool,
			job_country LowCardinality(String),
			salary_rate LowCardinality(String),
			salary_year_avg Nullable(Float64),
			salary_hour_avg Nullable(Float64),
			job_posted_date Nullable(DateTime),
			PRIMARY KEY (job_id)
		) ENGINE = ReplacingMergeTree()
		ORDER BY job_id
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS job_postings_fact`,
}
