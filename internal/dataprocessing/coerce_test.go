package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"100", 100, true},
		{"  42.5 ", 42.5, true},
		{"$1,200.50", 1200.5, true},
		{"8%", 8, true},
		{"8.25 %", 8.25, true},
		{"(12.50)", -12.5, true},
		{"-3", -3, true},
		{"", 0, false},
		{"   ", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := ParseNumber("Total Revenue", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseNumber_TextAndTypedAgree(t *testing.T) {
	typed, _, err := ParseNumber("Total Profit %", "8")
	require.NoError(t, err)
	text, _, err := ParseNumber("Total Profit %", "8%")
	require.NoError(t, err)

	assert.Equal(t, typed, text)
}

func TestParseNumber_Invalid(t *testing.T) {
	tests := []string{"twelve", "NaN", "nan", "Inf", "-infinity", "+Inf", "$Inf", "1e400"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			v, ok, err := ParseNumber("Total Revenue", raw)

			require.Error(t, err)
			assert.False(t, ok)
			assert.Zero(t, v)
			assert.True(t, apperrors.IsCoercionError(err))
			assert.Contains(t, err.Error(), "Total Revenue")
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"iso", "2025-05-03"},
		{"us", "5/3/2025"},
		{"us padded", "05/03/2025"},
		{"slashed iso", "2025/05/03"},
		{"long", "May 3, 2025"},
		{"excel serial", "45780"},
		{"iso datetime without zone", "2025-05-03T00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseDate("Date", tt.raw)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDate_LocalDateTimeKeepsClock(t *testing.T) {
	got, ok, err := ParseDate("Date", "2025-05-30T04:18:46")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, time.May, 30, 4, 18, 46, 0, time.UTC), got)
}

func TestParseDate_BlankAndInvalid(t *testing.T) {
	got, ok, err := ParseDate("Date", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, got.IsZero())

	_, _, err = ParseDate("Reqs. Date", "someday")
	require.Error(t, err)
	assert.True(t, apperrors.IsCoercionError(err))
}
