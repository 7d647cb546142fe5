package types

import (
	"context"
	"time"
)

// Logger defines the structured logging interface used throughout the pipeline.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// TypeHandler is the per-notification-type unit responsible for gathering
// domain data, rendering content, and invoking the email transport.
// Implementations live in internal/notifications/{dailysummary,milestone,workflow}.
type TypeHandler interface {
	// Type returns the notification type this handler serves.
	Type() NotificationType

	// Handle processes a single notification record end to end. A nil result
	// with a nil error is a valid success with no provider message id.
	Handle(ctx context.Context, n *NotificationRecord) (*HandlerResult, error)
}

// GuardClient reports whether an organization is blocked from messaging.
// A nil result means no guard is configured for the organization.
type GuardClient interface {
	Check(ctx context.Context, organizationID string) (*GuardResult, error)
}

// EmailProvider sends a single email and returns the provider message id.
type EmailProvider interface {
	Send(ctx context.Context, input SendInput) (string, error)
}

// TriggerPublisher fans a pipeline action out to the worker queue.
type TriggerPublisher interface {
	Publish(ctx context.Context, msg TriggerMessage) error
}
