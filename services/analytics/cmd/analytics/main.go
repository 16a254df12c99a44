package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Parthraj1905/data-nerd/common/cache"
	"github.com/Parthraj1905/data-nerd/common/cache/redis"
	"github.com/Parthraj1905/data-nerd/common/database"
	"github.com/Parthraj1905/data-nerd/common/telemetry"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/analytics"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/api"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/config"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/events"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const serviceName = "data-nerd-analytics"

var version = "dev"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newDialer(cfg *config.Config, logger *zap.Logger) (*database.Dialer, error) {
	return database.NewDialer(database.Options{
		DSN:              cfg.ClickHouseDSN,
		Username:         cfg.ClickHouseUsername,
		Password:         cfg.ClickHousePassword,
		Database:         cfg.ClickHouseDatabase,
		DialTimeout:      cfg.ClickHouseDialTimeout,
		MaxExecutionTime: cfg.ClickHouseMaxExecutionTime,
		TLSSkipVerify:    cfg.ClickHouseTLSSkipVerify,
		ReadOnly:         true,
	}, logger)
}

func newConnector(dialer *database.Dialer) analytics.Connector {
	return analytics.ConnectorFunc(func(ctx context.Context) (analytics.Session, error) {
		db, err := dialer.Dial(ctx)
		if err != nil {
			return nil, err
		}
		return db, nil
	})
}

func newCache(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) cache.Cache {
	if !cfg.CacheEnabled() {
		logger.Info("response cache disabled")
		return nil
	}

	c := redis.New(cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		KeyPrefix:     cache.DefaultOptions().KeyPrefix,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})

	logger.Info("response cache enabled",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL))
	return c
}

func newNATSConnection(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) (*nats.Conn, error) {
	if cfg.NATSURL == "" || !cfg.CacheEnabled() {
		return nil, nil
	}

	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("analytics-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return nc.Drain()
		},
	})

	logger.Info("connected to NATS", zap.String("url", cfg.NATSURL))
	return nc, nil
}

func newService(cfg *config.Config, logger *zap.Logger, connector analytics.Connector, c cache.Cache) *analytics.Service {
	var opts []analytics.Option
	if c != nil {
		opts = append(opts, analytics.WithCache(c, cfg.CacheTTL))
	}
	return analytics.NewService(logger, connector, opts...)
}

func registerTracing(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) error {
	if cfg.OTELCollectorURL == "" {
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, version, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: shutdown})

	logger.Info("tracing enabled", zap.String("collector", cfg.OTELCollectorURL))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newDialer,
			newConnector,
			newCache,
			newNATSConnection,
			newService,
			func(s *analytics.Service) api.Analytics { return s },
			func(s *analytics.Service) events.Invalidator { return s },
			api.NewHandler,
			api.NewServer,
			events.NewHandler,
		),
		fx.Invoke(
			registerTracing,
			api.RegisterServer,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
