// Package analytics serves the skill summary, trend and momentum views over
// the job postings dataset. Every call runs on its own data-store session and
// degrades to an empty result on failure.
package analytics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Parthraj1905/data-nerd/common/cache"
	"github.com/Parthraj1905/data-nerd/common/telemetry"
	apperrors "github.com/Parthraj1905/data-nerd/services/analytics/internal/errors"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/query"
)

// Session is a single data-store connection owned by one request.
type Session interface {
	Select(ctx context.Context, dest any, query string, args ...any) error
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

type ConnectorFunc func(ctx context.Context) (Session, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Session, error) {
	return f(ctx)
}

type Service struct {
	logger    *zap.Logger
	connector Connector
	cache     cache.Cache
	cacheTTL  time.Duration
	tracer    trace.Tracer
}

type Option func(*Service)

// WithCache enables read-through caching of successful results.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func NewService(logger *zap.Logger, connector Connector, opts ...Option) *Service {
	s := &Service{
		logger:    logger,
		connector: connector,
		tracer:    telemetry.GetTracer("data-nerd/analytics"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopSkills ranks up to 20 skills by posting share or average salary.
func (s *Service) TopSkills(ctx context.Context, filter models.SkillFilter) models.SkillSummary {
	filter.SortBy = models.ParseSortMode(string(filter.SortBy))

	ctx, span := s.tracer.Start(ctx, "Analytics.TopSkills")
	defer span.End()
	span.SetAttributes(
		telemetry.String("filter.job_title", filter.JobTitle),
		telemetry.String("filter.country", filter.Country),
		telemetry.String("filter.skill_type", filter.SkillType),
		telemetry.String("filter.sort_by", string(filter.SortBy)),
	)

	summary, err := readThrough(ctx, s, topSkillsKey(filter), func(ctx context.Context) (models.SkillSummary, error) {
		return s.topSkills(ctx, filter)
	})
	if err != nil {
		s.recordFailure(span, "top_skills", err,
			zap.String("job_title", filter.JobTitle),
			zap.String("country", filter.Country),
			zap.String("skill_type", filter.SkillType),
			zap.String("sort_by", string(filter.SortBy)),
		)
		return models.EmptySkillSummary()
	}

	span.SetAttributes(
		telemetry.Int("results.count", len(summary.Results)),
		telemetry.Int("total_jobs", int(summary.TotalJobs)),
	)
	return summary
}

// SkillTrends returns monthly posting counts for the five most linked skills.
func (s *Service) SkillTrends(ctx context.Context) []models.MonthlyTrendPoint {
	ctx, span := s.tracer.Start(ctx, "Analytics.SkillTrends")
	defer span.End()

	points, err := readThrough(ctx, s, skillTrendsKey, s.skillTrends)
	if err != nil {
		s.recordFailure(span, "skill_trends", err)
		return []models.MonthlyTrendPoint{}
	}

	span.SetAttributes(telemetry.Int("months.count", len(points)))
	return points
}

// Momentum returns the five skills whose demand moved the most between the
// two latest months.
func (s *Service) Momentum(ctx context.Context) []models.MomentumEntry {
	ctx, span := s.tracer.Start(ctx, "Analytics.Momentum")
	defer span.End()

	entries, err := readThrough(ctx, s, momentumKey, s.momentum)
	if err != nil {
		s.recordFailure(span, "momentum", err)
		return []models.MomentumEntry{}
	}

	span.SetAttributes(telemetry.Int("results.count", len(entries)))
	return entries
}

func (s *Service) topSkills(ctx context.Context, filter models.SkillFilter) (models.SkillSummary, error) {
	var summary models.SkillSummary

	err := s.withSession(ctx, func(sess Session) error {
		total := query.TotalJobs(filter)
		var totals []totalRow
		if err := sess.Select(ctx, &totals, total.SQL, total.Args...); err != nil {
			return apperrors.Internal("counting matching jobs", err)
		}
		if len(totals) != 1 {
			return apperrors.InvalidInput(fmt.Sprintf("expected one total row, got %d", len(totals)), nil)
		}

		stmt := query.SkillSummary(filter)
		var rows []skillRow
		if err := sess.Select(ctx, &rows, stmt.SQL, stmt.Args...); err != nil {
			return apperrors.Internal("aggregating skills", err)
		}

		summary = summarizeSkills(rows, totals[0].TotalJobs, filter.SortBy)
		return nil
	})

	return summary, err
}

func (s *Service) skillTrends(ctx context.Context) ([]models.MonthlyTrendPoint, error) {
	var points []models.MonthlyTrendPoint

	err := s.withSession(ctx, func(sess Session) error {
		stmt := query.SkillTrends()
		var rows []trendRow
		if err := sess.Select(ctx, &rows, stmt.SQL, stmt.Args...); err != nil {
			return apperrors.Internal("counting monthly skill demand", err)
		}

		var err error
		points, err = pivotTrends(rows)
		return err
	})

	return points, err
}

func (s *Service) momentum(ctx context.Context) ([]models.MomentumEntry, error) {
	entries := []models.MomentumEntry{}

	err := s.withSession(ctx, func(sess Session) error {
		months := query.LatestMonths()
		var monthRows []monthRow
		if err := sess.Select(ctx, &monthRows, months.SQL, months.Args...); err != nil {
			return apperrors.Internal("listing posting months", err)
		}

		latest, previous, ok, err := latestTwoMonths(monthRows)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Info("not enough months of postings for momentum", zap.Int("months", len(monthRows)))
			return nil
		}

		stmt := query.MonthOverMonth(latest, previous)
		var rows []momentumRow
		if err := sess.Select(ctx, &rows, stmt.SQL, stmt.Args...); err != nil {
			return apperrors.Internal("comparing monthly skill demand", err)
		}

		entries = rankMomentum(rows)
		return nil
	})

	return entries, err
}

// withSession acquires a session for fn and releases it on every path,
// including a panic while reshaping rows.
func (s *Service) withSession(ctx context.Context, fn func(Session) error) (err error) {
	sess, err := s.connector.Connect(ctx)
	if err != nil {
		return apperrors.Unavailable("connecting to data store", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.logger.Warn("failed to release data store session", zap.Error(cerr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Internal(fmt.Sprintf("recovered from panic: %v", r), nil)
		}
	}()

	return fn(sess)
}

func (s *Service) recordFailure(span trace.Span, mode string, err error, fields ...zap.Field) {
	span.RecordError(err)
	span.SetStatus(codes.Error, mode+" failed")

	fields = append(fields,
		zap.String("mode", mode),
		zap.String("error_type", string(apperrors.TypeOf(err))),
		zap.Error(err),
	)
	if stack := apperrors.StackOf(err); stack != nil {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	s.logger.Error("analytics query failed, returning empty result", fields...)
}
