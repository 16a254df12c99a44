package analytics

import (
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/Parthraj1905/data-nerd/services/analytics/internal/errors"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/query"
)

// Rows as scanned from ClickHouse. Column names match the aliases in the
// query package.

type totalRow struct {
	TotalJobs uint64 `ch:"total_jobs"`
}

type skillRow struct {
	SkillName string   `ch:"skill_name"`
	JobCount  uint64   `ch:"job_count"`
	AvgSalary *float64 `ch:"avg_salary"`
}

type trendRow struct {
	Month     string `ch:"month"`
	SkillName string `ch:"skill_name"`
	JobCount  uint64 `ch:"job_count"`
}

type monthRow struct {
	Month string `ch:"month_str"`
}

type momentumRow struct {
	SkillName     string `ch:"skill_name"`
	CurrentCount  uint64 `ch:"current_count"`
	PreviousCount uint64 `ch:"previous_count"`
}

const monthLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

func fromCount(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

// percentOf returns part/total as a percentage rounded to one decimal, or 0
// when total is 0.
func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return fromCount(part).
		Mul(hundred).
		Div(fromCount(total)).
		Round(1).
		InexactFloat64()
}

// changePercent is (current-previous)/previous*100 rounded to one decimal.
// previous must be non-zero.
func changePercent(current, previous uint64) decimal.Decimal {
	prev := fromCount(previous)
	return fromCount(current).
		Sub(prev).
		Mul(hundred).
		Div(prev).
		Round(1)
}

func summarizeSkills(rows []skillRow, totalJobs uint64, sortBy models.SortMode) models.SkillSummary {
	if len(rows) > query.TopSkillsLimit {
		rows = rows[:query.TopSkillsLimit]
	}

	results := make([]models.SkillStat, 0, len(rows))
	for _, row := range rows {
		stat := models.SkillStat{
			SkillName: row.SkillName,
			JobCount:  row.JobCount,
		}
		if row.AvgSalary != nil {
			stat.AvgSalary = *row.AvgSalary
		}

		if sortBy == models.SortBySalary {
			stat.Value = stat.AvgSalary
		} else {
			stat.Value = percentOf(row.JobCount, totalJobs)
		}
		results = append(results, stat)
	}

	return models.SkillSummary{
		Results:   results,
		TotalJobs: totalJobs,
	}
}

func pivotTrends(rows []trendRow) ([]models.MonthlyTrendPoint, error) {
	byMonth := make(map[string]map[string]uint64)
	for _, row := range rows {
		if _, err := time.Parse(monthLayout, row.Month); err != nil {
			return nil, apperrors.InvalidInput("trend row has malformed month "+row.Month, err)
		}
		if row.JobCount == 0 {
			continue
		}
		counts, ok := byMonth[row.Month]
		if !ok {
			counts = make(map[string]uint64)
			byMonth[row.Month] = counts
		}
		counts[row.SkillName] += row.JobCount
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	points := make([]models.MonthlyTrendPoint, 0, len(months))
	for _, month := range months {
		points = append(points, models.MonthlyTrendPoint{
			Month:  month,
			Counts: byMonth[month],
		})
	}
	return points, nil
}

// latestTwoMonths returns the most recent and the preceding distinct month.
// ok is false when fewer than two months exist.
func latestTwoMonths(rows []monthRow) (latest, previous string, ok bool, err error) {
	months := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, err := time.Parse(monthLayout, row.Month); err != nil {
			return "", "", false, apperrors.InvalidInput("month row is malformed: "+row.Month, err)
		}
		if _, dup := seen[row.Month]; dup {
			continue
		}
		seen[row.Month] = struct{}{}
		months = append(months, row.Month)
	}
	if len(months) < 2 {
		return "", "", false, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months[0], months[1], true, nil
}

func rankMomentum(rows []momentumRow) []models.MomentumEntry {
	type ranked struct {
		entry  models.MomentumEntry
		change decimal.Decimal
	}

	candidates := make([]ranked, 0, len(rows))
	for _, row := range rows {
		if row.PreviousCount <= query.MomentumMinPrevious {
			continue
		}
		change := changePercent(row.CurrentCount, row.PreviousCount)
		candidates = append(candidates, ranked{
			entry: models.MomentumEntry{
				SkillName:     row.SkillName,
				CurrentCount:  row.CurrentCount,
				PreviousCount: row.PreviousCount,
				ChangePercent: change.InexactFloat64(),
			},
			change: change,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if c := candidates[i].change.Abs().Cmp(candidates[j].change.Abs()); c != 0 {
			return c > 0
		}
		return candidates[i].entry.SkillName < candidates[j].entry.SkillName
	})

	if len(candidates) > query.MomentumLimit {
		candidates = candidates[:query.MomentumLimit]
	}

	entries := make([]models.MomentumEntry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, c.entry)
	}
	return entries
}
