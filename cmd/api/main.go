// Package main is the entry point for the Lumiso notification API server.
//
// It loads configuration, builds the database pool and AWS clients, wires the
// notification pipeline (type handlers, dispatcher, batch processor, daily
// scheduler, retry coordinator), and mounts the HTTP chassis.
//
// In local mode (APP_ENV=local), it runs as a standard HTTP server on the
// configured port. In Lambda mode, it will use the chiadapter to bridge API
// Gateway events to the chi router (to be wired when the Lambda adapter
// dependency is added).
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"lumiso/internal/api/handlers"
	"lumiso/internal/config"
	"lumiso/internal/core"
	"lumiso/internal/db"
	"lumiso/internal/external"
	notifcore "lumiso/internal/notifications/core"
	"lumiso/internal/notifications/dailysummary"
	"lumiso/internal/notifications/email"
	"lumiso/internal/notifications/milestone"
	"lumiso/internal/notifications/workflow"
	"lumiso/internal/queue"
	"lumiso/internal/security"
	"lumiso/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	slogger := newLogger(cfg.LogLevel)
	logger := types.NewSlogLogger(slogger)
	logger.Info("lumiso notification API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})

	var metrics notifcore.PipelineMetrics = notifcore.NopMetrics{}
	if cfg.Environment != "local" {
		metrics = notifcore.NewCloudWatchPipelineMetrics(cloudwatch.NewFromConfig(awsCfg), logger)
	}

	service, err := buildPipeline(cfg, pool, sqsClient, metrics, logger)
	if err != nil {
		return err
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = append(srv.HealthProbes, &databaseProbe{pool: pool})

	notifHandler := handlers.NewNotificationHandler(service, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, notifHandler.RegisterRoutes)

	srv.MountRoutes()

	if isLambdaEnvironment() {
		return runLambda(logger)
	}

	return runHTTPServer(srv, cfg, logger)
}

// buildPipeline assembles the notification pipeline service from its
// repositories, external clients, and type handlers. The worker entry point
// mirrors this wiring so both surfaces execute identical pipeline semantics.
func buildPipeline(cfg *config.Config, pool *pgxpool.Pool, sqsClient queue.SQSSender, metrics notifcore.PipelineMetrics, logger types.Logger) (*notifcore.PipelineService, error) {
	notifRepo := db.NewNotificationRepository(pool)
	identityRepo := db.NewIdentityRepository(pool)
	orgRepo := db.NewOrganizationRepository(pool)
	summaryRepo := db.NewSummaryRepository(pool)
	templateRepo := db.NewTemplateRepository(pool)
	prefRepo := db.NewPreferenceRepository(pool)
	memberRepo := db.NewMembershipRepository(pool)

	// Outbound calls go through the SSRF-safe client shared by all external
	// services.
	httpClient, err := security.NewSafeHTTPClient(10*time.Second, 3)
	if err != nil {
		return nil, fmt.Errorf("creating outbound HTTP client: %w", err)
	}

	resend := external.NewResendClient(httpClient, external.ResendClientConfig{
		APIKey: cfg.Email.ResendAPIKey.Unmask(),
		Logger: logger,
	})

	var guard types.GuardClient
	if cfg.Guard.BaseURL != "" {
		guard = external.NewGuardClient(httpClient, external.GuardClientConfig{
			BaseURL: cfg.Guard.BaseURL,
			APIKey:  cfg.Guard.APIKey.Unmask(),
			Logger:  logger,
		})
	}

	notifier := external.NewProjectNotifierClient(httpClient, external.NotifierClientConfig{
		BaseURL: cfg.Notifier.BaseURL,
		APIKey:  cfg.Notifier.APIKey.Unmask(),
		Logger:  logger,
	})

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}

	sender := types.SenderIdentity{
		Name:    cfg.Email.FromName,
		Address: cfg.Email.FromAddress,
	}
	clock := types.RealClock{}

	statuses := notifcore.NewStatusManager(notifRepo, logger)
	prefs := notifcore.NewPreferenceResolver(prefRepo, logger)

	dispatcher := notifcore.NewDispatcher(statuses, prefs, guard, metrics, logger)
	dispatcher.Register(dailysummary.New(identityRepo, orgRepo, summaryRepo, renderer, resend, clock, dailysummary.Config{
		Sender:     sender,
		AppBaseURL: cfg.Server.DashboardURL,
	}, logger))
	dispatcher.Register(workflow.New(templateRepo, identityRepo, resend, workflow.Config{
		Sender: sender,
	}, logger))
	dispatcher.Register(milestone.New(notifier, logger))

	batch := notifcore.NewBatchProcessor(notifRepo, dispatcher, statuses, clock, notifcore.BatchLimits{
		PendingLimit:         cfg.Pipeline.PendingBatchLimit,
		ScheduledLimit:       cfg.Pipeline.ScheduledBatchLimit,
		PendingRecencyWindow: cfg.Pipeline.PendingRecencyWindow,
	}, metrics, logger)

	publisher := queue.NewTriggerQueue(sqsClient, cfg.AWS, logger)
	scheduler := notifcore.NewDailyScheduler(memberRepo, prefRepo, notifRepo, guard, publisher, clock, notifcore.SchedulerConfig{
		DefaultSendTime: cfg.Pipeline.DefaultSendTime,
	}, metrics, logger)

	retry := notifcore.NewRetryCoordinator(notifRepo, metrics, logger)

	return notifcore.NewPipelineService(batch, scheduler, retry, logger), nil
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runLambda starts the server in AWS Lambda mode using the chi adapter.
func runLambda(logger types.Logger) error {
	// TODO: Wire chiadapter.New(srv.Handler()) and lambda.Start() when the
	// aws-lambda-go-api-proxy dependency is added.
	logger.Error("Lambda mode is not yet implemented; run with APP_ENV=local for HTTP mode")
	return fmt.Errorf("lambda mode not yet implemented")
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger types.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err.Error())
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newPool builds the pgx connection pool from the database configuration and
// verifies connectivity before the server accepts traffic.
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

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// databaseProbe reports database connectivity on the health endpoint.
type databaseProbe struct {
	pool *pgxpool.Pool
}

func (p *databaseProbe) Name() string { return "database" }

func (p *databaseProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

var _ core.HealthProbe = (*databaseProbe)(nil)
