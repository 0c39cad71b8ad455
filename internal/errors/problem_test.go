package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeDataMalformed, "Malformed Sales Data", "bad row", "/api/analysis").
		WithExtension("source", "may.csv").
		WithExtension("row", 3)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, TypeDataMalformed, body["type"])
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "may.csv", body["source"])
	assert.Equal(t, float64(3), body["row"])
}

func TestProblemDetails_OmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}

func TestProblemDetails_Render(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	err := render.Render(rec, req, NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "x", "/"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
