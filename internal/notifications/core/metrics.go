package core

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"lumiso/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPipelineMetrics implements PipelineMetrics by publishing to AWS
// CloudWatch.
//
// Metrics emitted:
//   - NotificationDispatch: Dims {NotificationType, Result} -- on every dispatch outcome
//   - NotificationBatchProcessed / NotificationBatchLatency: Dims {Action} -- per sweep
//   - NotificationsScheduled: records staged by the daily scheduler
//   - NotificationsRetried: records re-queued by the retry sweep
//
// Compile-time assertion that CloudWatchPipelineMetrics implements PipelineMetrics.
var _ PipelineMetrics = (*CloudWatchPipelineMetrics)(nil)

type CloudWatchPipelineMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchPipelineMetrics creates a CloudWatchPipelineMetrics publishing
// to the shared metric namespace.
func NewCloudWatchPipelineMetrics(client CloudWatchClient, logger types.Logger) *CloudWatchPipelineMetrics {
	return &CloudWatchPipelineMetrics{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

// RecordDispatch emits a NotificationDispatch metric with NotificationType and
// Result dimensions.
func (m *CloudWatchPipelineMetrics) RecordDispatch(ctx context.Context, notifType types.NotificationType, result MetricResult) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricDispatchAttempt),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(types.DimNotificationType),
						Value: aws.String(string(notifType)),
					},
					{
						Name:  aws.String(types.DimResult),
						Value: aws.String(string(result)),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record dispatch metric",
			"error", err.Error(),
			"notification_type", string(notifType),
			"result", string(result),
		)
	}
}

// RecordBatch emits the processed count and sweep latency for one batch run,
// both carrying the Action dimension. Latency is recorded in milliseconds.
func (m *CloudWatchPipelineMetrics) RecordBatch(ctx context.Context, action string, processed int, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{
			Name:  aws.String(types.DimAction),
			Value: aws.String(action),
		},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricBatchProcessed),
				Value:      aws.Float64(float64(processed)),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
			{
				MetricName: aws.String(types.MetricBatchLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: dims,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record batch metrics",
			"error", err.Error(),
			"action", action,
			"processed", processed,
		)
	}
}

// RecordScheduled emits the number of records staged by a scheduling run.
func (m *CloudWatchPipelineMetrics) RecordScheduled(ctx context.Context, count int) {
	m.putCount(ctx, types.MetricScheduledInserted, count)
}

// RecordRetried emits the number of records re-queued by a retry sweep.
func (m *CloudWatchPipelineMetrics) RecordRetried(ctx context.Context, count int) {
	m.putCount(ctx, types.MetricRetrySwept, count)
}

func (m *CloudWatchPipelineMetrics) putCount(ctx context.Context, name string, count int) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(float64(count)),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record count metric",
			"error", err.Error(),
			"metric", name,
			"count", count,
		)
	}
}
