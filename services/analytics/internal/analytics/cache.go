package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Parthraj1905/data-nerd/common/cache"
	"github.com/Parthraj1905/data-nerd/common/telemetry"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/models"
)

const (
	skillTrendsKey = "skill-trends"
	momentumKey    = "momentum"
)

func topSkillsKey(filter models.SkillFilter) string {
	values := url.Values{
		"job_title":  {filter.JobTitle},
		"country":    {filter.Country},
		"skill_type": {filter.SkillType},
		"sort_by":    {string(filter.SortBy)},
	}
	return "top-skills?" + values.Encode()
}

// readThrough serves key from the cache when possible and stores successful
// loads. Cache problems never fail the request.
func readThrough[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}

	span := trace.SpanFromContext(ctx)

	var cached string
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		var value T
		uerr := json.Unmarshal([]byte(cached), &value)
		if uerr == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			return value, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(uerr))
	case errors.Is(err, cache.ErrNotFound):
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	default:
		span.SetAttributes(telemetry.String("cache.result", "error"))
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return value, nil
}

// InvalidateCache drops every cached analytics result. It is a no-op when
// caching is disabled.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("cleared cached analytics results")
	return nil
}
