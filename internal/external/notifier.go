package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lumiso/internal/types"
)

// NotifierClientConfig holds the configuration for creating a
// ProjectNotifierClient.
type NotifierClientConfig struct {
	BaseURL string
	APIKey  string
	Logger  types.Logger
}

// ProjectNotifierClient implements ProjectNotifier against the downstream
// notification service. Milestone emails are rendered and fanned out there;
// this pipeline only forwards the event.
type ProjectNotifierClient struct {
	base    *BaseClient
	baseURL string
	apiKey  string
	logger  types.Logger
}

// NewProjectNotifierClient creates a ProjectNotifierClient with the standard
// retry policy.
func NewProjectNotifierClient(httpClient *http.Client, cfg NotifierClientConfig) *ProjectNotifierClient {
	base := NewBaseClient(
		httpClient,
		"project-notifier",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"Lumiso/1.0",
	)
	return &ProjectNotifierClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  cfg.Logger,
	}
}

// NewProjectNotifierClientWithBase creates a ProjectNotifierClient on a
// caller-provided BaseClient.
func NewProjectNotifierClientWithBase(base *BaseClient, cfg NotifierClientConfig) *ProjectNotifierClient {
	return &ProjectNotifierClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  cfg.Logger,
	}
}

// NotifyMilestone forwards a project milestone event. Any non-2xx response is
// a notifier error; the dispatcher decides whether that fails the record.
func (n *ProjectNotifierClient) NotifyMilestone(ctx context.Context, event MilestoneEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to marshal milestone event", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.baseURL+"/v1/project-milestones", bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to create notifier request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.base.Do(req)
	if err != nil {
		return wrapTransportError(err, types.ErrCodeUpstreamNotifier, "notifier request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.NewAppError(types.ErrCodeUpstreamNotifier,
			fmt.Sprintf("notifier returned status %d", resp.StatusCode), nil)
	}
	return nil
}

var _ ProjectNotifier = (*ProjectNotifierClient)(nil)
