package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"lumiso/internal/types"
)

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchPipelineMetrics_RecordDispatch(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	metrics.RecordDispatch(context.Background(), types.TypeDailySummary, MetricResultSuccess)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.calls))
	}

	input := cw.calls[0]
	if *input.Namespace != types.MetricNamespace {
		t.Errorf("expected namespace %q, got %q", types.MetricNamespace, *input.Namespace)
	}
	if len(input.MetricData) != 1 {
		t.Fatalf("expected 1 metric datum, got %d", len(input.MetricData))
	}

	datum := input.MetricData[0]
	if *datum.MetricName != types.MetricDispatchAttempt {
		t.Errorf("expected metric name %q, got %q", types.MetricDispatchAttempt, *datum.MetricName)
	}
	if *datum.Value != 1.0 {
		t.Errorf("expected value 1.0, got %f", *datum.Value)
	}
	if datum.Unit != cwtypes.StandardUnitCount {
		t.Errorf("expected unit Count, got %s", datum.Unit)
	}
	assertDimension(t, datum.Dimensions, types.DimNotificationType, string(types.TypeDailySummary))
	assertDimension(t, datum.Dimensions, types.DimResult, string(MetricResultSuccess))
}

func TestCloudWatchPipelineMetrics_RecordDispatch_Cancelled(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	metrics.RecordDispatch(context.Background(), types.TypeProjectMilestone, MetricResultCancelled)

	datum := cw.calls[0].MetricData[0]
	assertDimension(t, datum.Dimensions, types.DimNotificationType, string(types.TypeProjectMilestone))
	assertDimension(t, datum.Dimensions, types.DimResult, string(MetricResultCancelled))
}

func TestCloudWatchPipelineMetrics_RecordBatch(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	metrics.RecordBatch(context.Background(), "process-pending", 42, 350*time.Millisecond)

	if len(cw.calls) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.calls))
	}
	data := cw.calls[0].MetricData
	if len(data) != 2 {
		t.Fatalf("expected 2 metric datums, got %d", len(data))
	}

	if *data[0].MetricName != types.MetricBatchProcessed {
		t.Errorf("expected %q, got %q", types.MetricBatchProcessed, *data[0].MetricName)
	}
	if *data[0].Value != 42.0 {
		t.Errorf("expected processed value 42.0, got %f", *data[0].Value)
	}
	assertDimension(t, data[0].Dimensions, types.DimAction, "process-pending")

	if *data[1].MetricName != types.MetricBatchLatency {
		t.Errorf("expected %q, got %q", types.MetricBatchLatency, *data[1].MetricName)
	}
	if *data[1].Value != 350.0 {
		t.Errorf("expected latency value 350.0ms, got %f", *data[1].Value)
	}
	if data[1].Unit != cwtypes.StandardUnitMilliseconds {
		t.Errorf("expected unit Milliseconds, got %s", data[1].Unit)
	}
}

func TestCloudWatchPipelineMetrics_RecordScheduled(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	metrics.RecordScheduled(context.Background(), 18)

	datum := cw.calls[0].MetricData[0]
	if *datum.MetricName != types.MetricScheduledInserted {
		t.Errorf("expected %q, got %q", types.MetricScheduledInserted, *datum.MetricName)
	}
	if *datum.Value != 18.0 {
		t.Errorf("expected value 18.0, got %f", *datum.Value)
	}
}

func TestCloudWatchPipelineMetrics_RecordRetried(t *testing.T) {
	cw := &mockCloudWatchClient{}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	metrics.RecordRetried(context.Background(), 3)

	datum := cw.calls[0].MetricData[0]
	if *datum.MetricName != types.MetricRetrySwept {
		t.Errorf("expected %q, got %q", types.MetricRetrySwept, *datum.MetricName)
	}
	if *datum.Value != 3.0 {
		t.Errorf("expected value 3.0, got %f", *datum.Value)
	}
}

func TestCloudWatchPipelineMetrics_CloudWatchError(t *testing.T) {
	// CloudWatch errors should be logged but not returned (fire-and-forget).
	cw := &mockCloudWatchClient{returnErr: fmt.Errorf("cloudwatch unavailable")}
	metrics := NewCloudWatchPipelineMetrics(cw, &mockLogger{})

	// Should not panic or return error.
	metrics.RecordDispatch(context.Background(), types.TypeDailySummary, MetricResultFailure)
	metrics.RecordBatch(context.Background(), "process-scheduled", 1, time.Second)
	metrics.RecordScheduled(context.Background(), 1)

	if len(cw.calls) != 3 {
		t.Errorf("expected 3 call attempts, got %d", len(cw.calls))
	}
}

// assertDimension verifies a specific dimension exists with the expected value.
func assertDimension(t *testing.T, dims []cwtypes.Dimension, name, expectedValue string) {
	t.Helper()
	for _, d := range dims {
		if *d.Name == name {
			if *d.Value != expectedValue {
				t.Errorf("dimension %q: expected value %q, got %q", name, expectedValue, *d.Value)
			}
			return
		}
	}
	t.Errorf("dimension %q not found in %v", name, dims)
}
