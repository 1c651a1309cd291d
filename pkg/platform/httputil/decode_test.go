package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRequest is a simple test struct for JSON decoding
type testRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"test","value":42}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[testRequest](w, req, logger)

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "test", result.Name)
		assert.Equal(t, 42, result.Value)
	})

	t.Run("raw messages keep mistyped fields for the caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":12,"isSampad":"1"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[map[string]json.RawMessage](w, req, logger)

		require.True(t, ok)
		assert.JSONEq(t, `12`, string((*result)["name"]))
		assert.JSONEq(t, `"1"`, string((*result)["isSampad"]))
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid json}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[testRequest](w, req, logger)

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "bad_request", body.Error)
		assert.Equal(t, "invalid request body", body.Message)
	})

	t.Run("empty body returns error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[testRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("x", 2048) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 1024)

		_, ok := DecodeJSON[testRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "request body too large", resp.Message)
	})
}
