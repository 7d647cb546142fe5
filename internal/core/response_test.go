package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lumiso/internal/types"
)

// --- JSON helper tests ---

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(w, r, http.StatusOK, ActionResponse{Success: true, Action: "process-pending"})

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var decoded ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !decoded.Success || decoded.Action != "process-pending" {
		t.Errorf("unexpected envelope: %+v", decoded)
	}
}

// --- Error helper tests ---

func TestError_AppErrorMapsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	Error(w, r, types.NewAppError(types.ErrCodeNotFoundNotification, "Notification not found", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}

	var decoded ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Error != "Notification not found" {
		t.Errorf("expected app error message, got %q", decoded.Error)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if decoded.Stack != "" {
		t.Error("expected no stack outside the recoverer path")
	}
}

func TestError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	inner := types.NewAppError(types.ErrCodeUpstreamRateLimited, "provider rate limited", nil)
	Error(w, r, fmt.Errorf("sweep failed: %w", inner))

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429 from wrapped app error, got %d", w.Result().StatusCode)
	}
}

func TestError_GenericErrorIsOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	Error(w, r, errors.New("pq: connection refused at 10.0.3.7"))

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	var decoded ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if strings.Contains(decoded.Error, "10.0.3.7") {
		t.Error("internal error details must not leak to clients")
	}
}

// --- DecodeJSON tests ---

type decodeTarget struct {
	Action string `json:"action"`
	Force  bool   `json:"force"`
}

func TestDecodeJSON_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"process-pending","force":true}`))

	var dst decodeTarget
	if err := DecodeJSON(w, r, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Action != "process-pending" || !dst.Force {
		t.Errorf("unexpected decode result: %+v", dst)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty body", "", "request body must not be empty"},
		{"malformed JSON", `{"action":`, "malformed JSON in request body"},
		{"unknown field", `{"action":"x","bogus":1}`, "unknown field in request body"},
		{"multiple values", `{"action":"x"}{"action":"y"}`, "single JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst decodeTarget
			err := DecodeJSON(w, r, &dst)
			if err == nil {
				t.Fatal("expected decode error")
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *types.AppError, got %T", err)
			}
			if appErr.Code != types.ErrCodeValidationInvalidJSON {
				t.Errorf("expected invalid-json code, got %s", appErr.Code)
			}
			if !strings.Contains(appErr.Message, tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestDecodeJSON_TypeMismatchDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"force":"yes"}`))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	if err == nil {
		t.Fatal("expected decode error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Details["field"] != "force" {
		t.Errorf("expected field detail 'force', got %v", appErr.Details["field"])
	}
}
