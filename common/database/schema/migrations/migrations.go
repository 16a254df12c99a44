package migrations

import "github.com/Parthraj1905/data-nerd/common/database/schema"

// All lists every migration in the order it must be applied.
func All() []schema.Migration {
	return []schema.Migration{
		CreateJobPostingsFact,
		CreateSkillsDim,
		CreateSkillsJobDim,
	}
}
