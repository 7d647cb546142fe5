// Package main is the entry point for the archiver Lambda function.
//
// The archiver runs on an EventBridge schedule and snapshots terminal
// notifications (sent, cancelled, or failed with an exhausted retry budget)
// to cold storage as zstd-compressed JSON lines. Source rows are never
// deleted, so repeated runs are safe.
//
// In local mode (APP_ENV=local) the archival job runs once and the process
// exits, which is also how operators invoke it manually.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"

	"lumiso/internal/config"
	"lumiso/internal/db"
	"lumiso/internal/scheduler"
	"lumiso/internal/types"
)

// Handler holds the archiver Lambda dependencies.
type Handler struct {
	archiver *scheduler.Archiver
	logger   types.Logger
}

// Handle runs one archival pass.
func (h *Handler) Handle(ctx context.Context) (*scheduler.ArchiveResult, error) {
	result, err := h.archiver.ArchiveTerminal(ctx)
	if err != nil {
		h.logger.Error("archival run failed", "error", err.Error())
		return nil, err
	}
	return result, nil
}

func main() {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger := types.NewSlogLogger(slogger)

	logger.Info("archiver initializing")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err.Error())
		os.Exit(1)
	}

	archiveCfg := archiveConfigFromEnv(logger)

	snapshotDir := os.Getenv("SNAPSHOT_DIR")
	if snapshotDir == "" {
		snapshotDir = "/tmp/lumiso-snapshots"
	}

	archiver := scheduler.NewArchiver(
		db.NewNotificationRepository(pool),
		&scheduler.FileSink{Dir: snapshotDir},
		types.RealClock{},
		archiveCfg,
		logger,
	)

	handler := &Handler{archiver: archiver, logger: logger}

	logger.Info("archiver initialized",
		"environment", cfg.Environment,
		"snapshot_dir", snapshotDir,
	)

	if cfg.Environment == "local" {
		result, err := handler.Handle(ctx)
		if err != nil {
			os.Exit(1)
		}
		fmt.Printf("archived %d notifications", result.ArchivedCount)
		if result.SnapshotKey != "" {
			fmt.Printf(" to %s", result.SnapshotKey)
		}
		fmt.Println()
		return
	}

	lambda.Start(handler.Handle)
}

// archiveConfigFromEnv reads the optional retention and batch tuning knobs.
// Unset or invalid values fall back to the scheduler package defaults.
func archiveConfigFromEnv(logger types.Logger) scheduler.ArchiveConfig {
	var cfg scheduler.ArchiveConfig

	if raw := os.Getenv("ARCHIVE_RETENTION"); raw != "" {
		retention, err := time.ParseDuration(raw)
		if err != nil {
			logger.Warn("invalid ARCHIVE_RETENTION, using default", "value", raw)
		} else {
			cfg.Retention = retention
		}
	}

	if raw := os.Getenv("ARCHIVE_BATCH_LIMIT"); raw != "" {
		var limit int
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			logger.Warn("invalid ARCHIVE_BATCH_LIMIT, using default", "value", raw)
		} else {
			cfg.BatchLimit = limit
		}
	}

	return cfg
}

// newPool builds the pgx connection pool from the database configuration.
func newPool(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dbCfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolCfg.MaxConns = int32(dbCfg.MaxConns)
	poolCfg.MinConns = int32(dbCfg.MinConns)
	poolCfg.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = dbCfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbCfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
