package analytics

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
)

func salary(v float64) *float64 { return &v }

func TestPercentOf(t *testing.T) {
	tests := []struct {
		part, total uint64
		want        float64
	}{
		{part: 30, total: 50, want: 60},
		{part: 1, total: 3, want: 33.3},
		{part: 2, total: 3, want: 66.7},
		{part: 1, total: 8, want: 12.5},
		{part: 0, total: 0, want: 0},
		{part: 5, total: 0, want: 0},
		{part: 50, total: 50, want: 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.part, tt.total), func(t *testing.T) {
			if got := percentOf(tt.part, tt.total); got != tt.want {
				t.Fatalf("percentOf(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
			}
		})
	}
}

func TestChangePercent(t *testing.T) {
	tests := []struct {
		current, previous uint64
		want              string
	}{
		{current: 200, previous: 100, want: "100"},
		{current: 100, previous: 200, want: "-50"},
		{current: 1, previous: 3, want: "-66.7"},
		{current: 100, previous: 51, want: "96.1"},
		{current: 70, previous: 70, want: "0"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_vs_%d", tt.current, tt.previous), func(t *testing.T) {
			if got := changePercent(tt.current, tt.previous).String(); got != tt.want {
				t.Fatalf("changePercent(%d, %d) = %s, want %s", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestSummarizeSkillsByCount(t *testing.T) {
	rows := []skillRow{
		{SkillName: "SQL", JobCount: 30, AvgSalary: salary(98000)},
		{SkillName: "Excel", JobCount: 20, AvgSalary: nil},
	}

	summary := summarizeSkills(rows, 50, models.SortByCount)

	want := models.SkillSummary{
		TotalJobs: 50,
		Results: []models.SkillStat{
			{SkillName: "SQL", JobCount: 30, AvgSalary: 98000, Value: 60},
			{SkillName: "Excel", JobCount: 20, AvgSalary: 0, Value: 40},
		},
	}
	if !reflect.DeepEqual(summary, want) {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
}

func TestSummarizeSkillsZeroTotal(t *testing.T) {
	rows := []skillRow{{SkillName: "SQL", JobCount: 3}}

	summary := summarizeSkills(rows, 0, models.SortByCount)

	if summary.Results[0].Value != 0 {
		t.Fatalf("value = %v, want 0", summary.Results[0].Value)
	}
}

func TestSummarizeSkillsBySalary(t *testing.T) {
	rows := []skillRow{
		{SkillName: "Rust", JobCount: 12, AvgSalary: salary(150000)},
		{SkillName: "Go", JobCount: 40, AvgSalary: salary(140000)},
	}

	summary := summarizeSkills(rows, 500, models.SortBySalary)

	for _, stat := range summary.Results {
		if stat.Value != stat.AvgSalary {
			t.Fatalf("%s: value = %v, want avg salary %v", stat.SkillName, stat.Value, stat.AvgSalary)
		}
	}
	if summary.TotalJobs != 500 {
		t.Fatalf("total jobs = %d, want 500", summary.TotalJobs)
	}
}

func TestSummarizeSkillsCapsResults(t *testing.T) {
	rows := make([]skillRow, 25)
	for i := range rows {
		rows[i] = skillRow{SkillName: fmt.Sprintf("skill-%02d", i), JobCount: uint64(100 - i)}
	}

	summary := summarizeSkills(rows, 1000, models.SortByCount)

	if len(summary.Results) != 20 {
		t.Fatalf("len(results) = %d, want 20", len(summary.Results))
	}
}

func TestSummarizeSkillsEmptyRows(t *testing.T) {
	summary := summarizeSkills(nil, 0, models.SortByCount)

	if summary.Results == nil {
		t.Fatal("expected an empty, non-nil result slice")
	}
}

func TestPivotTrends(t *testing.T) {
	rows := []trendRow{
		{Month: "2024-02", SkillName: "SQL", JobCount: 10},
		{Month: "2024-01", SkillName: "SQL", JobCount: 8},
		{Month: "2024-01", SkillName: "Python", JobCount: 5},
		{Month: "2024-02", SkillName: "Python", JobCount: 0},
		{Month: "2023-12", SkillName: "Excel", JobCount: 3},
	}

	points, err := pivotTrends(rows)
	if err != nil {
		t.Fatalf("pivot trends: %v", err)
	}

	want := []models.MonthlyTrendPoint{
		{Month: "2023-12", Counts: map[string]uint64{"Excel": 3}},
		{Month: "2024-01", Counts: map[string]uint64{"SQL": 8, "Python": 5}},
		{Month: "2024-02", Counts: map[string]uint64{"SQL": 10}},
	}
	if !reflect.DeepEqual(points, want) {
		t.Fatalf("points = %+v, want %+v", points, want)
	}
}

func TestPivotTrendsMonthsStrictlyAscending(t *testing.T) {
	rows := []trendRow{
		{Month: "2024-03", SkillName: "SQL", JobCount: 1},
		{Month: "2023-11", SkillName: "SQL", JobCount: 1},
		{Month: "2024-03", SkillName: "Go", JobCount: 1},
		{Month: "2024-01", SkillName: "SQL", JobCount: 1},
	}

	points, err := pivotTrends(rows)
	if err != nil {
		t.Fatalf("pivot trends: %v", err)
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].Month >= points[i].Month {
			t.Fatalf("months not strictly ascending: %s then %s", points[i-1].Month, points[i].Month)
		}
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
}

func TestPivotTrendsRejectsMalformedMonth(t *testing.T) {
	if _, err := pivotTrends([]trendRow{{Month: "March", SkillName: "SQL", JobCount: 1}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLatestTwoMonths(t *testing.T) {
	tests := []struct {
		name         string
		rows         []monthRow
		wantLatest   string
		wantPrevious string
		wantOK       bool
	}{
		{name: "none", rows: nil},
		{name: "one", rows: []monthRow{{Month: "2024-03"}}},
		{name: "duplicate only", rows: []monthRow{{Month: "2024-03"}, {Month: "2024-03"}}},
		{
			name:         "two",
			rows:         []monthRow{{Month: "2024-03"}, {Month: "2024-02"}},
			wantLatest:   "2024-03",
			wantPrevious: "2024-02",
			wantOK:       true,
		},
		{
			name:         "unordered",
			rows:         []monthRow{{Month: "2023-12"}, {Month: "2024-01"}},
			wantLatest:   "2024-01",
			wantPrevious: "2023-12",
			wantOK:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, previous, ok, err := latestTwoMonths(tt.rows)
			if err != nil {
				t.Fatalf("latestTwoMonths: %v", err)
			}
			if ok != tt.wantOK || latest != tt.wantLatest || previous != tt.wantPrevious {
				t.Fatalf("got (%q, %q, %v), want (%q, %q, %v)", latest, previous, ok, tt.wantLatest, tt.wantPrevious, tt.wantOK)
			}
		})
	}
}

func TestLatestTwoMonthsRejectsMalformedMonth(t *testing.T) {
	if _, _, _, err := latestTwoMonths([]monthRow{{Month: "2024-13"}, {Month: "2024-01"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRankMomentum(t *testing.T) {
	rows := []momentumRow{
		{SkillName: "A", CurrentCount: 200, PreviousCount: 100},
		{SkillName: "B", CurrentCount: 60, PreviousCount: 120},
		{SkillName: "C", CurrentCount: 100, PreviousCount: 51},
		{SkillName: "D", CurrentCount: 500, PreviousCount: 40},
		{SkillName: "E", CurrentCount: 50, PreviousCount: 50},
		{SkillName: "F", CurrentCount: 101, PreviousCount: 100},
		{SkillName: "G", CurrentCount: 99, PreviousCount: 100},
		{SkillName: "H", CurrentCount: 300, PreviousCount: 200},
	}

	entries := rankMomentum(rows)

	want := []models.MomentumEntry{
		{SkillName: "A", CurrentCount: 200, PreviousCount: 100, ChangePercent: 100},
		{SkillName: "C", CurrentCount: 100, PreviousCount: 51, ChangePercent: 96.1},
		{SkillName: "B", CurrentCount: 60, PreviousCount: 120, ChangePercent: -50},
		{SkillName: "H", CurrentCount: 300, PreviousCount: 200, ChangePercent: 50},
		{SkillName: "F", CurrentCount: 101, PreviousCount: 100, ChangePercent: 1},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries = %+v, want %+v", entries, want)
	}
}

func TestRankMomentumProperties(t *testing.T) {
	rows := make([]momentumRow, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, momentumRow{
			SkillName:     fmt.Sprintf("skill-%02d", i),
			CurrentCount:  uint64(10 + i*7),
			PreviousCount: uint64(30 + i*3),
		})
	}

	entries := rankMomentum(rows)

	if len(entries) > 5 {
		t.Fatalf("len(entries) = %d, want at most 5", len(entries))
	}
	for i, entry := range entries {
		if entry.PreviousCount <= 50 {
			t.Fatalf("%s has previous count %d, want > 50", entry.SkillName, entry.PreviousCount)
		}
		if i > 0 && abs(entries[i-1].ChangePercent) < abs(entry.ChangePercent) {
			t.Fatalf("entries not ordered by absolute change at %d", i)
		}
	}
}

func TestRankMomentumEmpty(t *testing.T) {
	entries := rankMomentum(nil)
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty, non-nil entries, got %#v", entries)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
