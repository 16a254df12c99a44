package migrations

import "github.com/Parthraj1905/data-nerd/common/database/schema"

var CreateSkillsDim = schema.Migration{
	Version:     2,
	Description: "Create skills_dim table",
	Up: `
		CREATE TABLE IF NOT EXISTS skills_dim (
			skill_id UInt32,
			skills String,
			type LowCardinality(String),
			PRIMARY KEY (skill_id)
		) ENGINE = ReplacingMergeTree()
		ORDER BY skill_id
	`,
	Down: `DROP TABLE IF EXISTS skills_dim`,
}
