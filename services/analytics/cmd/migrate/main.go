package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Parthraj1905/data-nerd/common/database"
	"github.com/Parthraj1905/data-nerd/common/database/schema"
	"github.com/Parthraj1905/data-nerd/common/database/schema/migrations"
	"github.com/Parthraj1905/data-nerd/services/analytics/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recently applied migration")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:              cfg.ClickHouseDSN,
		Username:         cfg.ClickHouseUsername,
		Password:         cfg.ClickHousePassword,
		Database:         cfg.ClickHouseDatabase,
		DialTimeout:      cfg.ClickHouseDialTimeout,
		MaxExecutionTime: cfg.ClickHouseMaxExecutionTime,
		TLSSkipVerify:    cfg.ClickHouseTLSSkipVerify,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if err := migrator.CreateMigrationsTable(ctx); err != nil {
		logger.Fatal("Failed to create migrations table", zap.Error(err))
	}

	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("Failed to get applied migrations", zap.Error(err))
	}

	all := migrations.All()

	if *down {
		latest, ok := schema.LatestApplied(all, applied)
		if !ok {
			logger.Info("No applied migrations to roll back")
			return
		}
		if err := migrator.RollbackMigration(ctx, latest); err != nil {
			logger.Fatal("Failed to roll back migration",
				zap.Int("version", latest.Version),
				zap.Error(err),
			)
		}
		return
	}

	pending := schema.Pending(all, applied)
	if len(pending) == 0 {
		logger.Info("Schema is up to date", zap.Int("migrations", len(all)))
		return
	}

	for _, migration := range pending {
		if err := migrator.ApplyMigration(ctx, migration); err != nil {
			logger.Fatal("Failed to apply migration",
				zap.Int("version", migration.Version),
				zap.Error(err),
			)
		}
	}

	logger.Info("All migrations completed successfully", zap.Int("applied", len(pending)))
}
