// Package main is the entry point for the pipeline worker Lambda function.
//
// The worker consumes trigger messages from the SQS trigger queue and executes
// them through the same pipeline service as the HTTP dispatch endpoint. Each
// invocation receives a batch of SQS messages; failures are reported via
// partial batch responses so SQS retries only the failed messages.
//
// Cold start builds the full pipeline once (database pool, external clients,
// type handlers, dispatcher) and reuses it across invocations.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"lumiso/internal/config"
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

// PipelineExecutor is the subset of the pipeline service the worker calls.
type PipelineExecutor interface {
	Execute(ctx context.Context, req notifcore.ActionRequest) (any, error)
}

// Handler holds the dependencies for the worker Lambda handler.
type Handler struct {
	service PipelineExecutor
	logger  types.Logger
}

// Handle processes an SQS event containing one or more trigger messages. Each
// message is processed independently; failed messages are returned in
// batchItemFailures so SQS retries only those.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to process trigger message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processMessage executes a single trigger message through the pipeline.
func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	var msg types.TriggerMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		h.logger.Error("failed to unmarshal trigger message",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		// Permanent parse failure, do not retry (return nil to ACK).
		return nil
	}

	logger := h.logger.With(
		"action", msg.Action,
		"organization_id", msg.OrganizationID,
		"trace_id", msg.TraceID,
	)
	logger.Info("processing trigger message")

	start := time.Now()
	result, err := h.service.Execute(ctx, notifcore.ActionRequest{
		Action:         msg.Action,
		OrganizationID: msg.OrganizationID,
		Force:          msg.Force,
	})
	if err != nil {
		if appErr, permanent := validationError(err); permanent {
			// Malformed actions never succeed on retry; log and ACK.
			logger.Error("trigger message rejected", "error", appErr.Message)
			return nil
		}
		return err
	}

	logger.Info("trigger message processed",
		"duration_ms", time.Since(start).Milliseconds(),
		"result", fmt.Sprintf("%+v", result),
	)
	return nil
}

// validationError reports whether err is a validation AppError, which is
// permanent and must not be re-queued.
func validationError(err error) (*types.AppError, bool) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return nil, false
	}
	switch appErr.Code {
	case types.ErrCodeValidationInvalidAction, types.ErrCodeValidationMissingField:
		return appErr, true
	}
	return nil, false
}

func main() {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger := types.NewSlogLogger(slogger)

	logger.Info("pipeline worker initializing")

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

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err.Error())
		os.Exit(1)
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
		logger.Error("failed to build pipeline", "error", err.Error())
		os.Exit(1)
	}

	handler := &Handler{service: service, logger: logger}

	logger.Info("pipeline worker initialized",
		"environment", cfg.Environment,
		"trigger_queue", cfg.AWS.TriggerQueue,
	)

	// Local mode: read a JSON SQS event from stdin instead of starting the
	// Lambda runtime.
	// Usage: echo '{"Records":[{"messageId":"1","body":"{...}"}]}' | go run ./cmd/worker
	if cfg.Environment == "local" {
		runLocal(handler, logger)
		return
	}

	lambda.Start(handler.Handle)
}

// runLocal executes one SQS event read from stdin and exits.
func runLocal(handler *Handler, logger types.Logger) {
	logger.Info("APP_ENV=local: reading SQS event from stdin")

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("failed to read stdin", "error", err.Error())
		os.Exit(1)
	}
	if len(payload) == 0 {
		logger.Error("no input received on stdin")
		os.Exit(1)
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		logger.Error("failed to parse stdin as SQS event", "error", err.Error())
		os.Exit(1)
	}

	response, err := handler.Handle(context.Background(), sqsEvent)
	if err != nil {
		logger.Error("handler execution failed", "error", err.Error())
		os.Exit(1)
	}
	if len(response.BatchItemFailures) > 0 {
		respJSON, _ := json.MarshalIndent(response, "", "  ")
		fmt.Fprintln(os.Stderr, string(respJSON))
	}

	logger.Info("handler execution completed",
		"records_processed", len(sqsEvent.Records),
		"failures", len(response.BatchItemFailures),
	)
}

// buildPipeline assembles the pipeline service. This mirrors the API server
// wiring so triggers and HTTP dispatches execute identical semantics.
func buildPipeline(cfg *config.Config, pool *pgxpool.Pool, sqsClient queue.SQSSender, metrics notifcore.PipelineMetrics, logger types.Logger) (*notifcore.PipelineService, error) {
	notifRepo := db.NewNotificationRepository(pool)
	identityRepo := db.NewIdentityRepository(pool)
	orgRepo := db.NewOrganizationRepository(pool)
	summaryRepo := db.NewSummaryRepository(pool)
	templateRepo := db.NewTemplateRepository(pool)
	prefRepo := db.NewPreferenceRepository(pool)
	memberRepo := db.NewMembershipRepository(pool)

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
