package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "parse error",
			err:        NewParseError("may.csv", 4, errors.New("wrong number of fields")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataMalformed,
			wantTitle:  "Malformed Sales Data",
		},
		{
			name:       "wrapped coercion error",
			err:        fmt.Errorf("upload: %w", NewCoercionError("Total Profit %", "n/a", nil)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataMalformed,
			wantTitle:  "Malformed Sales Data",
		},
		{
			name:       "empty dataset",
			err:        NewEmptyDatasetError("period range"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeEmptyDataset,
			wantTitle:  "No Sales Data",
		},
		{
			name:       "validation",
			err:        NewAppValidationError("month must be YYYY-MM"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Validation Failed",
		},
		{
			name:       "api error",
			err:        ErrNoDataset,
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, "/api/analysis", body["instance"])
			assert.NotContains(t, body, "stack")
			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_ParseErrorExtensions(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis", nil)

	problem := handler.ErrorToProblem(NewParseError("june.csv", 12, nil), req)

	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
	assert.Equal(t, "june.csv", problem.Extensions["source"])
	assert.Equal(t, 12, problem.Extensions["row"])
	assert.Equal(t, "PARSING", problem.Extensions["error_type"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	handler := NewErrorHandler(nil, true)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"production", false},
		{"development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, tt.includeStack)

			req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-7"))
			rec := httptest.NewRecorder()
			handler.HandlePanic(rec, req, "exploded")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, TypeInternal, body["type"])
			assert.Equal(t, "req-7", body["trace_id"])
			if tt.includeStack {
				assert.Equal(t, "exploded", body["panic"])
			} else {
				assert.NotContains(t, body, "panic")
			}

			testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
			testutil.AssertLogAttr(t, logs, "request_id", "req-7")
		})
	}
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE")
}
