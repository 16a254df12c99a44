// Package query builds the parameterized ClickHouse statements behind the
// analytics endpoints. Builders are pure: values are only ever bound through
// named parameters, never spliced into SQL text.
package query

import (
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
)

const (
	TopSkillsLimit = 20
	// SalaryMinPostings is the posting count a skill must exceed to be ranked
	// by salary.
	SalaryMinPostings = 10
	TrendSkillCount   = 5
	// MomentumMinPrevious is the previous-month count a skill must exceed to
	// be ranked by momentum.
	MomentumMinPrevious = 50
	MomentumLimit       = 5
)

const monthFormat = `formatDateTime(assumeNotNull(%s), '%%Y-%%m')`

const skillJoins = `
		FROM job_postings_fact AS jpf
		INNER JOIN skills_job_dim AS sjd ON jpf.job_id = sjd.job_id
		INNER JOIN skills_dim AS s ON sjd.skill_id = s.skill_id`

type Statement struct {
	SQL  string
	Args []any
}

type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) equals(column, param, value string) {
	if value == "" {
		return
	}
	c.clauses = append(c.clauses, fmt.Sprintf("%s = @%s", column, param))
	c.args = append(c.args, clickhouse.Named(param, value))
}

func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "\n\t\tWHERE " + strings.Join(c.clauses, "\n\t\t\tAND ")
}

func postingFilters(f models.SkillFilter) *conditions {
	c := &conditions{}
	c.equals("jpf.job_title_short", "job_title", f.JobTitle)
	c.equals("jpf.job_country", "country", f.Country)
	return c
}

// TotalJobs counts distinct postings matching the job title and country
// filters. The skill type filter is ignored so the total stays stable when
// the caller narrows by skill category.
func TotalJobs(f models.SkillFilter) Statement {
	c := postingFilters(f)

	sql := `
		SELECT count(DISTINCT jpf.job_id) AS total_jobs` + skillJoins + c.where()

	return Statement{SQL: sql, Args: c.args}
}

// SkillSummary ranks skills by posting count or by average yearly salary.
func SkillSummary(f models.SkillFilter) Statement {
	c := postingFilters(f)
	c.equals("s.type", "skill_type", f.SkillType)
	if f.SortBy == models.SortBySalary {
		c.raw("jpf.salary_year_avg IS NOT NULL")
	}

	var b strings.Builder
	b.WriteString(`
		SELECT
			s.skills AS skill_name,
			count(sjd.job_id) AS job_count,
			round(avg(jpf.salary_year_avg)) AS avg_salary`)
	b.WriteString(skillJoins)
	b.WriteString(c.where())
	b.WriteString("\n\t\tGROUP BY s.skills")

	if f.SortBy == models.SortBySalary {
		fmt.Fprintf(&b, "\n\t\tHAVING job_count > %d", SalaryMinPostings)
		b.WriteString("\n\t\tORDER BY avg_salary DESC, skill_name ASC")
	} else {
		b.WriteString("\n\t\tORDER BY job_count DESC, skill_name ASC")
	}
	fmt.Fprintf(&b, "\n\t\tLIMIT %d", TopSkillsLimit)

	return Statement{SQL: b.String(), Args: c.args}
}

// SkillTrends counts monthly postings for the most linked skills of all time.
func SkillTrends() Statement {
	month := fmt.Sprintf(monthFormat, "jpf.job_posted_date")

	sql := fmt.Sprintf(`
		WITH top_skills AS (
			SELECT skill_id
			FROM skills_job_dim
			GROUP BY skill_id
			ORDER BY count(job_id) DESC, skill_id ASC
			LIMIT %d
		)
		SELECT
			%s AS month,
			s.skills AS skill_name,
			count(sjd.job_id) AS job_count`+skillJoins+`
		WHERE sjd.skill_id IN (SELECT skill_id FROM top_skills)
			AND jpf.job_posted_date IS NOT NULL
		GROUP BY month, skill_name
		ORDER BY month ASC, skill_name ASC`, TrendSkillCount, month)

	return Statement{SQL: sql}
}

// LatestMonths lists the two most recent distinct posting months.
func LatestMonths() Statement {
	sql := fmt.Sprintf(`
		SELECT DISTINCT %s AS month_str
		FROM job_postings_fact
		WHERE job_posted_date IS NOT NULL
		ORDER BY month_str DESC
		LIMIT 2`, fmt.Sprintf(monthFormat, "job_posted_date"))

	return Statement{SQL: sql}
}

// MonthOverMonth returns per-skill counts for two months, keeping only skills
// present in both and busy enough in the earlier one.
func MonthOverMonth(latest, previous string) Statement {
	month := fmt.Sprintf(monthFormat, "jpf.job_posted_date")
	perMonth := func(param string) string {
		return `
			SELECT
				s.skills AS skill_name,
				count(jpf.job_id) AS cnt` + strings.ReplaceAll(skillJoins, "\n\t\t", "\n\t\t\t") + `
			WHERE jpf.job_posted_date IS NOT NULL
				AND ` + month + ` = @` + param + `
			GROUP BY skill_name`
	}

	sql := fmt.Sprintf(`
		WITH current_month AS (%s
		),
		previous_month AS (%s
		)
		SELECT
			curr.skill_name AS skill_name,
			curr.cnt AS current_count,
			prev.cnt AS previous_count
		FROM current_month AS curr
		INNER JOIN previous_month AS prev ON curr.skill_name = prev.skill_name
		WHERE prev.cnt > %d`, perMonth("latest"), perMonth("previous"), MomentumMinPrevious)

	return Statement{
		SQL: sql,
		Args: []any{
			clickhouse.Named("latest", latest),
			clickhouse.Named("previous", previous),
		},
	}
}
