package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Parthraj1905/data-nerd/common/telemetry"
)

const (
	// JobPostingsSubject carries postings stored by the processing pipeline.
	JobPostingsSubject = "jobs.new"
	queueGroup         = "analytics-service"
	invalidateTimeout  = 5 * time.Second
)

// Invalidator drops cached analytics results.
type Invalidator interface {
	InvalidateCache(ctx context.Context) error
}

type Handler struct {
	logger      *zap.Logger
	nc          *nats.Conn
	tracer      trace.Tracer
	invalidator Invalidator
	sub         *nats.Subscription
}

// NewHandler accepts a nil connection, in which case no subscription is made.
func NewHandler(logger *zap.Logger, nc *nats.Conn, invalidator Invalidator) *Handler {
	return &Handler{
		logger:      logger,
		nc:          nc,
		tracer:      telemetry.GetTracer("data-nerd/analytics/events"),
		invalidator: invalidator,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	if h.nc == nil {
		h.logger.Info("NATS not configured, cache invalidation on new postings disabled")
		return nil
	}

	sub, err := h.nc.QueueSubscribe(JobPostingsSubject, queueGroup, h.handleJobPosting)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", JobPostingsSubject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions", zap.String("subject", JobPostingsSubject))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Unsubscribe()
		},
	})

	return nil
}

func (h *Handler) handleJobPosting(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "handleJobPosting")
	defer span.End()
	span.SetAttributes(
		telemetry.String("nats.subject", msg.Subject),
		telemetry.Int("message.size", len(msg.Data)),
	)

	if err := h.invalidator.InvalidateCache(ctx); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to invalidate analytics cache",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
		return
	}

	h.logger.Debug("Invalidated analytics cache after new posting",
		zap.String("subject", msg.Subject),
	)
}
