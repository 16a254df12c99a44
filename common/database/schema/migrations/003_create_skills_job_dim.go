package migrations

import "github.com/Parthraj1905/data-nerd/common/database/schema"

// CreateSkillsJobDim links postings to skills. Ordered by skill first since
// every analytics query groups by skill.
var CreateSkillsJobDim = schema.Migration{
	Version:     3,
	Description: "Create skills_job_dim table",
	Up: `
		CREATE TABLE IF NOT EXISTS skills_job_dim (
			job_id UInt64,
			skill_id UInt32,
			PRIMARY KEY (skill_id, job_id)
		) ENGINE = ReplacingMergeTree()
		ORDER BY (skill_id, job_id)
	`,
	Down: `DROP TABLE IF EXISTS skills_job_dim`,
}
