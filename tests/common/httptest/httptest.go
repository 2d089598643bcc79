//go:build unit || e2e

package httptest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// PerformRequest drives the router in-process. A non-nil body is sent as
// JSON, and a non-empty authToken is attached as a bearer credential.
func PerformRequest(t *testing.T, router *gin.Engine, method, path string, body any, authToken string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, encodeBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func encodeBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()

	if body == nil {
		return bytes.NewBuffer(nil)
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err, "request body must marshal to JSON")
	return bytes.NewBuffer(raw)
}

// DecodeResponseBody unmarshals a recorded response body into target.
func DecodeResponseBody(t *testing.T, body *bytes.Buffer, target any) error {
	t.Helper()

	err := json.NewDecoder(body).Decode(target)
	require.NoError(t, err, "response body must decode")
	return err
}
