package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
)

type Analytics interface {
	TopSkills(ctx context.Context, filter models.SkillFilter) models.SkillSummary
	SkillTrends(ctx context.Context) []models.MonthlyTrendPoint
	Momentum(ctx context.Context) []models.MomentumEntry
}

type Handler struct {
	logger    *zap.Logger
	analytics Analytics
}

func NewHandler(logger *zap.Logger, analytics Analytics) *Handler {
	return &Handler{
		logger:    logger,
		analytics: analytics,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /api/top-skills", h.topSkills)
	mux.HandleFunc("GET /api/skill-trends", h.skillTrends)
	mux.HandleFunc("GET /api/momentum", h.momentum)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) topSkills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SkillFilter{
		JobTitle:  strings.TrimSpace(q.Get("job_title")),
		Country:   strings.TrimSpace(q.Get("country")),
		SkillType: strings.TrimSpace(q.Get("skill_type")),
		SortBy:    models.ParseSortMode(strings.TrimSpace(q.Get("sort_by"))),
	}

	h.writeJSON(w, h.analytics.TopSkills(r.Context(), filter))
}

func (h *Handler) skillTrends(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.analytics.SkillTrends(r.Context()))
}

func (h *Handler) momentum(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.analytics.Momentum(r.Context()))
}

// writeJSON always answers 200. Analytics failures are already folded into
// empty result shapes.
func (h *Handler) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response body", zap.Error(err))
	}
}
