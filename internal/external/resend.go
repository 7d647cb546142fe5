package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumiso/internal/types"
)

// resendAPIBase is the default Resend API base URL. Overridable in tests via
// ResendClientConfig.BaseURL.
const resendAPIBase = "https://api.resend.com"

// ResendClientConfig holds the configuration for creating a ResendClient.
type ResendClientConfig struct {
	APIKey  string
	BaseURL string
	Logger  types.Logger
}

// ResendClient implements types.EmailProvider against the Resend /emails
// endpoint. Calls route through BaseClient so delivery inherits the shared
// circuit breaker and retry behavior.
type ResendClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  types.Logger
}

// NewResendClient creates a ResendClient with the standard retry policy.
func NewResendClient(httpClient *http.Client, cfg ResendClientConfig) *ResendClient {
	base := NewBaseClient(
		httpClient,
		"resend",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"Lumiso/1.0",
	)
	return newResendClient(base, cfg)
}

// NewResendClientWithBase creates a ResendClient on a caller-provided
// BaseClient, used by tests to disable retries.
func NewResendClientWithBase(base *BaseClient, cfg ResendClientConfig) *ResendClient {
	return newResendClient(base, cfg)
}

func newResendClient(base *BaseClient, cfg ResendClientConfig) *ResendClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendAPIBase
	}
	return &ResendClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  cfg.Logger,
	}
}

// resendSendPayload is the Resend POST /emails request body.
type resendSendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// resendSendResponse carries the provider message id on success.
type resendSendResponse struct {
	ID string `json:"id"`
}

// resendErrorResponse is the Resend error body.
type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send transmits an email through Resend and returns the provider message id.
// 403 maps to ErrCodeEmailBlocked; 429 and 5xx are retried by BaseClient and
// surface as rate-limited/unavailable; remaining 4xx map to the email provider
// error code.
func (r *ResendClient) Send(ctx context.Context, input types.SendInput) (string, error) {
	if len(input.To) == 0 {
		return "", types.NewAppError(types.ErrCodeEmailMissingAddr, "no recipient address", nil)
	}

	from := input.From.Address
	if input.From.Name != "" {
		from = fmt.Sprintf("%s <%s>", input.From.Name, input.From.Address)
	}
	body, err := json.Marshal(resendSendPayload{
		From:    from,
		To:      input.To,
		Subject: input.Subject,
		HTML:    input.HTML,
	})
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to marshal Resend payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to create Resend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.base.Do(req)
	if err != nil {
		return "", wrapTransportError(err, types.ErrCodeUpstreamEmailProvider, "Resend request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var result resendSendResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", types.NewAppError(types.ErrCodeUpstreamEmailProvider,
				"Resend returned an unreadable success body", err)
		}
		return result.ID, nil
	}

	return "", r.handleErrorResponse(resp)
}

func (r *ResendClient) handleErrorResponse(resp *http.Response) error {
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("Resend returned status %d with an unreadable body", resp.StatusCode), readErr)
	}

	var apiErr resendErrorResponse
	message := string(raw)
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		message = apiErr.Message
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return types.NewAppError(types.ErrCodeEmailBlocked,
			"Resend blocked delivery: "+message, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(types.ErrCodeUpstreamRateLimited,
			"Resend rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return types.NewAppError(types.ErrCodeUpstreamUnavailable,
			"Resend server error: "+message, nil)
	default:
		return types.NewAppError(types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("Resend error (%d): %s", resp.StatusCode, message), nil)
	}
}

// wrapTransportError preserves AppErrors produced by BaseClient and wraps
// anything else with the given code.
func wrapTransportError(err error, code types.ErrorCode, message string) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(code, message, err)
}

var _ types.EmailProvider = (*ResendClient)(nil)
