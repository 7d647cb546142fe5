package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiso/internal/types"
)

func newResendTestClient(t *testing.T, handler http.HandlerFunc) (*ResendClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := NewBaseClient(
		srv.Client(),
		"resend-test",
		RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		"Lumiso/1.0",
		WithSleepFunc(noSleep),
	)
	client := NewResendClientWithBase(base, ResendClientConfig{
		APIKey:  "re_test_key",
		BaseURL: srv.URL,
	})
	return client, srv
}

func testSendInput() types.SendInput {
	return types.SendInput{
		From:    types.SenderIdentity{Name: "Lumiso", Address: "notifications@lumiso.app"},
		To:      []string{"user@example.com"},
		Subject: "📅 Daily Summary - 10 March 2026",
		HTML:    "<html><body>summary</body></html>",
	}
}

func TestResendClient_Send_Success(t *testing.T) {
	var gotBody resendSendPayload
	var gotAuth string
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "re_msg_123"})
	})

	id, err := client.Send(context.Background(), testSendInput())
	require.NoError(t, err)
	assert.Equal(t, "re_msg_123", id)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "Lumiso <notifications@lumiso.app>", gotBody.From)
	assert.Equal(t, []string{"user@example.com"}, gotBody.To)
}

func TestResendClient_Send_ForbiddenMapsBlocked(t *testing.T) {
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"name":    "validation_error",
			"message": "recipient is suppressed",
		})
	})

	_, err := client.Send(context.Background(), testSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeEmailBlocked, appErr.Code)
	assert.Contains(t, appErr.Message, "recipient is suppressed")
}

func TestResendClient_Send_OtherClientErrorMapsProvider(t *testing.T) {
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid from address"})
	})

	_, err := client.Send(context.Background(), testSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamEmailProvider, appErr.Code)
}

func TestResendClient_Send_ServerErrorMapsUnavailable(t *testing.T) {
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Send(context.Background(), testSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}

func TestResendClient_Send_NoRecipient(t *testing.T) {
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	input := testSendInput()
	input.To = nil

	_, err := client.Send(context.Background(), input)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeEmailMissingAddr, appErr.Code)
}

func TestResendClient_Send_FromWithoutName(t *testing.T) {
	var gotBody resendSendPayload
	client, _ := newResendTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "re_msg_456"})
	})

	input := testSendInput()
	input.From.Name = ""

	_, err := client.Send(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "notifications@lumiso.app", gotBody.From)
}
