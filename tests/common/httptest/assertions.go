//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccessResponse checks the status code and, for 2xx responses,
// decodes the body into targetStruct when one is given.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, targetStruct any) {
	t.Helper()

	require.Equal(t, expectedStatus, w.Code, "unexpected status, body: %s", w.Body.String())

	if expectedStatus >= 200 && expectedStatus < 300 && targetStruct != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), targetStruct),
			"response body is not valid JSON: %s", w.Body.String())
	}
}

// AssertErrorResponse checks the status code and that the error envelope
// carries expectedErrorMsg somewhere in its message.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedErrorMsg string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "unexpected status, body: %s", w.Body.String())

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope),
		"error body is not valid JSON: %s", w.Body.String())

	if expectedErrorMsg != "" {
		assert.Contains(t, envelope.Error.Message, expectedErrorMsg)
	}
}
