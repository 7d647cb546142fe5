// Package queue provides the SQS producer that fans pipeline actions out to
// the notification worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"lumiso/internal/config"
	"lumiso/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// TriggerQueue publishes TriggerMessages to the notification trigger queue.
// The worker consumes them and invokes the same pipeline service the HTTP API
// exposes.
type TriggerQueue struct {
	client   SQSSender
	queueURL string
	logger   types.Logger
}

// NewTriggerQueue creates a TriggerQueue publishing to the configured queue.
func NewTriggerQueue(client SQSSender, awsCfg config.AWSConfig, logger types.Logger) *TriggerQueue {
	return &TriggerQueue{
		client:   client,
		queueURL: awsCfg.TriggerQueue,
		logger:   logger,
	}
}

var _ types.TriggerPublisher = (*TriggerQueue)(nil)

// Publish serializes the message and sends it. A missing trace id is filled
// in so every trigger is traceable across the queue hop.
func (q *TriggerQueue) Publish(ctx context.Context, msg types.TriggerMessage) error {
	if msg.TraceID == "" {
		msg.TraceID = uuid.New().String()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal trigger message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"action": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Action),
			},
		},
	}

	if _, err := q.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send trigger message to %s: %w", q.queueURL, err)
	}

	q.logger.Info("trigger message sent",
		"queue_url", q.queueURL,
		"action", msg.Action,
		"organization_id", msg.OrganizationID,
		"trace_id", msg.TraceID,
	)
	return nil
}
