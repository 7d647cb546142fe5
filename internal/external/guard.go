package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumiso/internal/types"
)

// GuardClientConfig holds the configuration for creating a GuardHTTPClient.
type GuardClientConfig struct {
	BaseURL string
	APIKey  string
	Logger  types.Logger
}

// GuardHTTPClient implements types.GuardClient against the messaging guard
// service, which tracks per-organization sending standing (bounce and
// complaint history).
type GuardHTTPClient struct {
	base    *BaseClient
	baseURL string
	apiKey  string
	logger  types.Logger
}

// NewGuardClient creates a GuardHTTPClient. Guard lookups sit on the hot path
// of every dispatch, so the retry policy is tighter than the email provider's.
func NewGuardClient(httpClient *http.Client, cfg GuardClientConfig) *GuardHTTPClient {
	base := NewBaseClient(
		httpClient,
		"messaging-guard",
		RetryPolicy{
			MaxRetries: 1,
			MinWait:    250 * time.Millisecond,
			MaxWait:    2 * time.Second,
		},
		"Lumiso/1.0",
	)
	return &GuardHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  cfg.Logger,
	}
}

// NewGuardClientWithBase creates a GuardHTTPClient on a caller-provided
// BaseClient.
func NewGuardClientWithBase(base *BaseClient, cfg GuardClientConfig) *GuardHTTPClient {
	return &GuardHTTPClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  cfg.Logger,
	}
}

// Check returns the organization's messaging standing. Callers treat guard
// unavailability as their own policy decision; this client only reports it.
func (g *GuardHTTPClient) Check(ctx context.Context, organizationID string) (*types.GuardResult, error) {
	reqURL := fmt.Sprintf("%s/v1/organizations/%s/standing",
		g.baseURL, url.PathEscape(organizationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to create guard request", err)
	}
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.base.Do(req)
	if err != nil {
		return nil, wrapTransportError(err, types.ErrCodeUpstreamGuard, "guard request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamGuard,
			fmt.Sprintf("guard returned status %d", resp.StatusCode), nil)
	}

	var result types.GuardResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGuard,
			"guard returned an unreadable body", err)
	}
	return &result, nil
}

var _ types.GuardClient = (*GuardHTTPClient)(nil)
