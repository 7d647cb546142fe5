package core

import (
	"context"
	"fmt"

	"lumiso/internal/types"
)

// Pipeline actions. The HTTP dispatch endpoint and the SQS worker accept the
// same action vocabulary and route through the same service.
const (
	ActionProcessPending       = "process-pending"
	ActionProcessScheduled     = "process-scheduled"
	ActionTriggerImmediate     = "trigger-immediate"
	ActionScheduleNotification = "schedule-notification"
	ActionRetryFailed          = "retry-failed"
)

// ActionRequest is the decoded payload of a pipeline action, whether it
// arrived over HTTP or from the trigger queue.
type ActionRequest struct {
	Action         string
	NotificationID string
	OrganizationID string
	Force          bool
}

// PipelineService is the single entry point for pipeline actions. It fans
// out to the batch processor, the daily scheduler, and the retry
// coordinator.
type PipelineService struct {
	batch     *BatchProcessor
	scheduler *DailyScheduler
	retry     *RetryCoordinator
	logger    types.Logger
}

// NewPipelineService creates a PipelineService.
func NewPipelineService(batch *BatchProcessor, scheduler *DailyScheduler, retry *RetryCoordinator, logger types.Logger) *PipelineService {
	return &PipelineService{
		batch:     batch,
		scheduler: scheduler,
		retry:     retry,
		logger:    logger,
	}
}

// Execute runs one pipeline action and returns its action-specific result.
// Unknown actions and missing required fields are validation errors; they
// never reach the stores.
func (s *PipelineService) Execute(ctx context.Context, req ActionRequest) (any, error) {
	s.logger.Info("executing pipeline action",
		"action", req.Action,
		"organization_id", req.OrganizationID,
		"force", req.Force,
	)

	switch req.Action {
	case ActionProcessPending:
		result, err := s.batch.ProcessPending(ctx, req.OrganizationID, req.Force)
		if err != nil {
			return nil, err
		}
		return result, nil

	case ActionProcessScheduled:
		result, err := s.batch.ProcessScheduled(ctx, req.OrganizationID, req.Force)
		if err != nil {
			return nil, err
		}
		return result, nil

	case ActionTriggerImmediate:
		if req.NotificationID == "" {
			return nil, types.NewAppError(types.ErrCodeValidationMissingField,
				"notification_id is required for trigger-immediate", nil)
		}
		result, err := s.batch.ProcessOne(ctx, req.NotificationID)
		if err != nil {
			return nil, err
		}
		return result, nil

	case ActionScheduleNotification:
		result, err := s.scheduler.ScheduleDailySummaries(ctx, req.OrganizationID)
		if err != nil {
			return nil, err
		}
		return result, nil

	case ActionRetryFailed:
		result, err := s.retry.RetryFailed(ctx, req.OrganizationID)
		if err != nil {
			return nil, err
		}
		return result, nil

	default:
		return nil, types.NewAppError(types.ErrCodeValidationInvalidAction,
			fmt.Sprintf("unsupported action: %s", req.Action), nil)
	}
}
