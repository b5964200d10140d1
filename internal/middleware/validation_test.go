package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/shared/testutil"
	"ugbmonitor/internal/validation"
)

func TestRequestValidator_ValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger, apierrors.NewErrorHandler(logger, false))

	assert.NoError(t, v.ValidateStruct(validation.FilterQuery{Status: []string{"standby", "Semua"}}))

	err := v.ValidateStruct(validation.FilterQuery{Status: []string{"HILANG"}})
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "status[0]", details.Errors[0].Field)
	assert.Contains(t, details.Errors[0].Message, "STAND BY")

	err = v.ValidateStruct(validation.ClusterQuery{})
	require.True(t, errors.As(err, &apiErr))
	details = apiErr.Details.(apierrors.ValidationErrors)
	assert.Len(t, details.Errors, 2)
}

func TestRequestValidator_Check(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger, apierrors.NewErrorHandler(logger, false))

	rec := httptest.NewRecorder()
	ok := v.Check(rec, httptest.NewRequest(http.MethodGet, "/api/cluster", nil), validation.ClusterQuery{})
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("multipart/form-data")(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"get skips", http.MethodGet, "", http.StatusOK},
		{"multipart with boundary", http.MethodPost, "multipart/form-data; boundary=xyz", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"json", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/upload", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
