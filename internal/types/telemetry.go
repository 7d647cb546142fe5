package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricDispatchAttempt   = "NotificationDispatch"
	MetricBatchProcessed    = "NotificationBatchProcessed"
	MetricBatchLatency      = "NotificationBatchLatency"
	MetricScheduledInserted = "NotificationsScheduled"
	MetricRetrySwept        = "NotificationsRetried"

	// Dimension Keys
	DimNotificationType = "NotificationType"
	DimResult           = "Result"
	DimAction           = "Action"

	// Metric Namespace
	MetricNamespace = "Lumiso"
)
