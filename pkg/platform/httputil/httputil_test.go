package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fusebot/pkg/domain-errors"
)

type messageRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

func (r *messageRequest) Validate() error {
	if r.RoomID == "" {
		return dErrors.New(dErrors.CodeValidation, "room_id is required")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeSessionExpired, "token rejected"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "session_expired", body["error"])
	assert.Equal(t, "token rejected", body["error_description"])
}

func TestWriteError_UnknownErrorNeverLeaksDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestDomainCodeToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:       http.StatusNotFound,
		dErrors.CodeBadRequest:     http.StatusBadRequest,
		dErrors.CodeValidation:     http.StatusBadRequest,
		dErrors.CodeUnauthorized:   http.StatusUnauthorized,
		dErrors.CodeSessionExpired: http.StatusUnauthorized,
		dErrors.CodeUpstream:       http.StatusBadGateway,
		dErrors.CodeProtocol:       http.StatusBadGateway,
		dErrors.CodeTimeout:        http.StatusGatewayTimeout,
		dErrors.CodeStorage:        http.StatusInternalServerError,
		dErrors.CodeInternal:       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, DomainCodeToHTTPStatus(code), string(code))
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/messages",
			bytes.NewBufferString(`{"room_id":"room-1","text":"Fusion"}`))

		got, ok := DecodeAndPrepare[messageRequest](rec, req, discardLogger(), context.Background(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "room-1", got.RoomID)
		assert.Equal(t, "Fusion", got.Text)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/messages",
			bytes.NewBufferString(`{not json`))

		_, ok := DecodeAndPrepare[messageRequest](rec, req, discardLogger(), context.Background(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid request with domain code preserved", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/messages",
			bytes.NewBufferString(`{"text":"Fusion"}`))

		_, ok := DecodeAndPrepare[messageRequest](rec, req, discardLogger(), context.Background(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "validation_failed", body["error"])
	})
}
