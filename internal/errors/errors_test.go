package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"sales-dashboard/internal/services"
)

func TestFromService(t *testing.T) {
	dsErr := &services.DataSourceError{Source: "sales.csv", Op: "open", Err: fmt.Errorf("no such file")}

	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{"data source", dsErr, CodeServiceUnavail, http.StatusServiceUnavailable},
		{"wrapped data source", fmt.Errorf("query: %w", dsErr), CodeServiceUnavail, http.StatusServiceUnavailable},
		{"invalid parameter", fmt.Errorf("%w: horizon", services.ErrInvalidParameter), CodeValidation, http.StatusBadRequest},
		{"app error passthrough", RateLimit("slow down"), CodeRateLimit, http.StatusTooManyRequests},
		{"unknown", io.ErrUnexpectedEOF, CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromService(tt.err)
			if got.Code != tt.wantCode || got.StatusCode != tt.wantStatus {
				t.Errorf("FromService() = %s/%d, want %s/%d", got.Code, got.StatusCode, tt.wantCode, tt.wantStatus)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WriteError(w, logger, fmt.Errorf("%w: horizon must be >= 0", services.ErrInvalidParameter), "req-1")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Details   string `json:"details"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error.Code != string(CodeValidation) || resp.Error.RequestID != "req-1" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Error.Details == "" {
		t.Error("validation errors should carry details")
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"n": 1}, map[string]string{"Cache-Control": "no-store"})

	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("status=%d headers=%v", w.Code, w.Header())
	}
	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || !resp.Success {
		t.Errorf("decode = %+v, %v", resp, err)
	}
}

func TestWriteSuccess_UnencodablePayload(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"infinity", map[string]float64{"total_revenue": math.Inf(1)}},
		{"nan", []float64{math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteSuccess(w, tt.data)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("body is not an error envelope: %v", err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != CodeInternal {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}
