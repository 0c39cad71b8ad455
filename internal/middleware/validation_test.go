package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "salespulse/internal/errors"
)

func TestValidator_ParseAnalysisQuery(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		query   string
		want    AnalysisQuery
		wantErr string
	}{
		{"empty", "", AnalysisQuery{}, ""},
		{"department and month", "department=Leafy+Greens&month=2025-05", AnalysisQuery{Department: "Leafy Greens", Month: "2025-05"}, ""},
		{"view is lowercased", "view=Products", AnalysisQuery{View: "products"}, ""},
		{"bad month", "month=2025-13", AnalysisQuery{}, "month"},
		{"month wrong shape", "month=2025-5", AnalysisQuery{}, "month"},
		{"bad view", "view=regions", AnalysisQuery{}, "view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analysis?"+tt.query, nil)
			got, err := v.ParseAnalysisQuery(req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			apiErr, ok := err.(*apierrors.APIError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, 1)
			assert.Equal(t, tt.wantErr, details.Errors[0].Field)
		})
	}
}

func TestAnalysisQuery_Filter(t *testing.T) {
	f, err := AnalysisQuery{Department: " Herbs ", Month: "2025-05"}.Filter()
	require.NoError(t, err)
	assert.Equal(t, "Herbs", f.Department)
	require.NotNil(t, f.Month)
	assert.Equal(t, 2025, f.Month.Year)
	assert.Equal(t, time.May, f.Month.Month)

	f, err = AnalysisQuery{}.Filter()
	require.NoError(t, err)
	assert.Nil(t, f.Month)
}
