package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type SortMode string

const (
	SortByCount  SortMode = "count"
	SortBySalary SortMode = "salary"
)

// ParseSortMode maps a request value onto a sort mode. Anything other than
// "salary" sorts by count.
func ParseSortMode(value string) SortMode {
	if SortMode(value) == SortBySalary {
		return SortBySalary
	}
	return SortByCount
}

// SkillFilter narrows the skill summary. An empty field matches everything.
type SkillFilter struct {
	JobTitle  string
	Country   string
	SkillType string
	SortBy    SortMode
}

type SkillStat struct {
	SkillName string  `json:"skill_name"`
	JobCount  uint64  `json:"job_count"`
	AvgSalary float64 `json:"avg_salary"`
	Value     float64 `json:"value"`
}

type SkillSummary struct {
	Results   []SkillStat `json:"results"`
	TotalJobs uint64      `json:"total_jobs"`
}

func EmptySkillSummary() SkillSummary {
	return SkillSummary{Results: []SkillStat{}}
}

// MonthlyTrendPoint is one calendar month of posting counts, keyed by skill.
// It serializes flat: {"month": "2024-03", "SQL": 120, "Python": 98}.
type MonthlyTrendPoint struct {
	Month  string
	Counts map[string]uint64
}

const monthKey = "month"

func (p MonthlyTrendPoint) MarshalJSON() ([]byte, error) {
	skills := make([]string, 0, len(p.Counts))
	for skill := range p.Counts {
		if skill == monthKey {
			continue
		}
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	month, err := json.Marshal(p.Month)
	if err != nil {
		return nil, err
	}
	buf.Write(month)

	for _, skill := range skills {
		key, err := json.Marshal(skill)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", p.Counts[skill])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (p *MonthlyTrendPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	monthRaw, ok := raw[monthKey]
	if !ok {
		return fmt.Errorf("trend point is missing %q", monthKey)
	}
	if err := json.Unmarshal(monthRaw, &p.Month); err != nil {
		return fmt.Errorf("decode month: %w", err)
	}
	delete(raw, monthKey)

	p.Counts = make(map[string]uint64, len(raw))
	for skill, countRaw := range raw {
		var count uint64
		if err := json.Unmarshal(countRaw, &count); err != nil {
			return fmt.Errorf("decode count for %q: %w", skill, err)
		}
		p.Counts[skill] = count
	}

	return nil
}

type MomentumEntry struct {
	SkillName     string  `json:"skill_name"`
	CurrentCount  uint64  `json:"current_count"`
	PreviousCount uint64  `json:"previous_count"`
	ChangePercent float64 `json:"change_percent"`
}
