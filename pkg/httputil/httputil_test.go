package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/trickreich/SuluSyliusProducerPlugin/pkg/errors"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, rec.Body.String())
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]any{"code": "MUG"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"code":"MUG"}}`, rec.Body.String())
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "app error not found",
			err:        apperrors.NotFound("product", "MUG"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "product MUG not found",
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("preview: %w", apperrors.SerializationFailed("MUG", fmt.Errorf("no translation"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SERIALIZATION_FAILED",
			wantMsg:    "product MUG could not be serialized",
		},
		{
			name:       "bare not found",
			err:        fmt.Errorf("get: %w", apperrors.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "resource not found",
		},
		{
			name:       "bare invalid input",
			err:        fmt.Errorf("limit: %w", apperrors.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
			wantMsg:    "limit: invalid input",
		},
		{
			name:       "bare serialization",
			err:        apperrors.ErrSerialization,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SERIALIZATION_FAILED",
			wantMsg:    "resource could not be serialized",
		},
		{
			name:       "bare unavailable",
			err:        apperrors.ErrServiceUnavail,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
			wantMsg:    "a dependency is unavailable",
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("pq: relation does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/MUG", nil)
			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}

func TestWriteError_RequestID(t *testing.T) {
	ctx := logger.WithCorrelationID(t.Context(), "req-42")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.ErrNotFound, logger.Discard())

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestWriteError_LogsServerErrorsToFallback(t *testing.T) {
	l, buf := bufferLogger()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/MUG/synchronize", nil)

	WriteError(httptest.NewRecorder(), req, fmt.Errorf("boom"), l)

	out := buf.String()
	assert.Contains(t, out, `"msg":"request failed"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"path":"/api/v1/products/MUG/synchronize"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestWriteError_PrefersContextLogger(t *testing.T) {
	fallback, fallbackBuf := bufferLogger()
	scoped, scopedBuf := bufferLogger()
	ctx := logger.NewContext(t.Context(), scoped)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	WriteError(httptest.NewRecorder(), req, apperrors.ErrServiceUnavail, fallback)

	assert.Empty(t, fallbackBuf.String())
	assert.Contains(t, scopedBuf.String(), `"status":503`)
}

func TestWriteError_ClientErrorsNotLogged(t *testing.T) {
	l, buf := bufferLogger()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(httptest.NewRecorder(), req, apperrors.InvalidInput("bad limit"), l)

	assert.Empty(t, buf.String())
}

func TestWriteValidationError(t *testing.T) {
	type body struct {
		BatchSize int `json:"batch_size" validate:"gte=1"`
	}

	t.Run("field errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteValidationError(rec, validator.Validate(body{}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "must be greater than or equal to 1", resp.Error.Fields["batch_size"])
	})

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteValidationError(rec, fmt.Errorf("decode request body: unexpected EOF"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
		assert.Empty(t, resp.Error.Fields)
		assert.Equal(t, "decode request body: unexpected EOF", resp.Error.Message)
	})
}
