package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Parthraj1905/data-nerd/services/analytics/internal/config"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
)

type fakeAnalytics struct {
	summary  models.SkillSummary
	trends   []models.MonthlyTrendPoint
	momentum []models.MomentumEntry

	lastFilter models.SkillFilter
}

func (f *fakeAnalytics) TopSkills(_ context.Context, filter models.SkillFilter) models.SkillSummary {
	f.lastFilter = filter
	return f.summary
}

func (f *fakeAnalytics) SkillTrends(context.Context) []models.MonthlyTrendPoint {
	return f.trends
}

func (f *fakeAnalytics) Momentum(context.Context) []models.MomentumEntry {
	return f.momentum
}

func newTestServer(t *testing.T, analytics Analytics, origins ...string) http.Handler {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg := &config.Config{
		HTTPAddr:           ":0",
		HTTPReadTimeout:    time.Second,
		HTTPWriteTimeout:   time.Second,
		CORSAllowedOrigins: origins,
	}
	logger := zaptest.NewLogger(t)
	return NewServer(cfg, logger, NewHandler(logger, analytics)).Handler
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTopSkillsParsesFilters(t *testing.T) {
	analytics := &fakeAnalytics{summary: models.SkillSummary{
		TotalJobs: 50,
		Results:   []models.SkillStat{{SkillName: "SQL", JobCount: 30, AvgSalary: 90000, Value: 60}},
	}}
	h := newTestServer(t, analytics)

	rec := get(t, h, "/api/top-skills?job_title=Data+Analyst&country=&skill_type=programming&sort_by=count")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := models.SkillFilter{JobTitle: "Data Analyst", SkillType: "programming", SortBy: models.SortByCount}
	if analytics.lastFilter != want {
		t.Fatalf("filter = %+v, want %+v", analytics.lastFilter, want)
	}
	body := strings.TrimSpace(rec.Body.String())
	wantBody := `{"results":[{"skill_name":"SQL","job_count":30,"avg_salary":90000,"value":60}],"total_jobs":50}`
	if body != wantBody {
		t.Fatalf("body = %s, want %s", body, wantBody)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestTopSkillsDefaultsToCount(t *testing.T) {
	analytics := &fakeAnalytics{summary: models.EmptySkillSummary()}
	h := newTestServer(t, analytics)

	get(t, h, "/api/top-skills")

	if analytics.lastFilter.SortBy != models.SortByCount {
		t.Fatalf("sort by = %q, want count", analytics.lastFilter.SortBy)
	}
}

func TestEmptyShapesAreStillOK(t *testing.T) {
	analytics := &fakeAnalytics{
		summary:  models.EmptySkillSummary(),
		trends:   []models.MonthlyTrendPoint{},
		momentum: []models.MomentumEntry{},
	}
	h := newTestServer(t, analytics)

	tests := []struct {
		target string
		want   string
	}{
		{target: "/api/top-skills?sort_by=salary", want: `{"results":[],"total_jobs":0}`},
		{target: "/api/skill-trends", want: `[]`},
		{target: "/api/momentum", want: `[]`},
		{target: "/healthz", want: `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.want {
				t.Fatalf("body = %s, want %s", body, tt.want)
			}
		})
	}
}

func TestSkillTrendsBody(t *testing.T) {
	analytics := &fakeAnalytics{trends: []models.MonthlyTrendPoint{
		{Month: "2024-01", Counts: map[string]uint64{"SQL": 3}},
	}}
	h := newTestServer(t, analytics)

	rec := get(t, h, "/api/skill-trends")

	if body := strings.TrimSpace(rec.Body.String()); body != `[{"month":"2024-01","SQL":3}]` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestMomentumBody(t *testing.T) {
	analytics := &fakeAnalytics{momentum: []models.MomentumEntry{
		{SkillName: "Python", CurrentCount: 200, PreviousCount: 100, ChangePercent: 100},
	}}
	h := newTestServer(t, analytics)

	rec := get(t, h, "/api/momentum")

	want := `[{"skill_name":"Python","current_count":200,"previous_count":100,"change_percent":100}]`
	if body := strings.TrimSpace(rec.Body.String()); body != want {
		t.Fatalf("body = %s, want %s", body, want)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h := newTestServer(t, &fakeAnalytics{})

	if rec := get(t, h, "/api/unknown"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
