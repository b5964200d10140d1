package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugbmonitor/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "missing columns",
			err:        NewMissingColumnError("UGB UP3 METRO", []string{"STATUS"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeIngestMissingColumn,
			wantDetail: "Sheet 'UGB UP3 METRO' kehilangan kolom: STATUS",
		},
		{
			name:       "no valid sheet",
			err:        fmt.Errorf("process: %w", NewNoValidSheetError([]string{"A"})),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeIngestNoSheet,
			wantDetail: "Tidak ditemukan sheet yang valid. Sheet harus salah satu dari: A",
		},
		{
			name:       "storage failure",
			err:        NewStorageError("rename database", fmt.Errorf("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeStorage,
			wantDetail: "[STORAGE] rename database: permission denied",
		},
		{
			name:       "api error",
			err:        ErrUnsupportedFile,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeIngestFileFormat,
			wantDetail: ErrUnsupportedFile.Message,
		},
		{
			name:       "body limit",
			err:        fmt.Errorf("read form: %w", &http.MaxBytesError{Limit: 10}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantDetail: ErrPayloadTooLarge.Message,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "generic",
			err:        fmt.Errorf("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
			rec := httptest.NewRecorder()
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/upload", body["instance"])
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
			assert.Contains(t, body, "trace_id")
			level := slog.LevelWarn
			if tt.wantStatus >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			testutil.AssertLogContains(t, logs, level, "request failed")
			testutil.AssertLogAttr(t, logs, "component", "error_handler")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, rec.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestMapAppError_ContextBecomesExtensions(t *testing.T) {
	err := NewMissingColumnError("UGB UP3 KARANG", []string{"STATUS", "NO SERI"})

	problem, ok := MapAppError(err, "trace-1", "/api/upload")
	require.True(t, ok)

	assert.Equal(t, "UGB UP3 KARANG", problem.Extensions["sheet"])
	assert.Equal(t, []string{"STATUS", "NO SERI"}, problem.Extensions["missing_columns"])
	assert.Equal(t, "trace-1", problem.Extensions["trace_id"])
	assert.Equal(t, "MISSING_COLUMN", problem.Extensions["error_type"])

	_, ok = MapAppError(fmt.Errorf("plain"), "", "")
	assert.False(t, ok)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "").
		WithExtension("field", "status")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "status", got["field"])
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
	assert.EqualValues(t, http.StatusBadRequest, got["status"])
}

func TestErrorHandler_HandlePanicAndNotFound(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/map", nil), "kaboom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaboom", body["panic"])

	rec = httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/records", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrPayloadTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool     `json:"success"`
		Error   APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.ErrorCode)
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/cluster", nil),
		NewValidationErrors([]ValidationError{{Field: "lat", Message: "required"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	assert.Contains(t, rec.Body.String(), `"field":"lat"`)
}
