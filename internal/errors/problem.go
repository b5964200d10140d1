package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// appErrorStatus maps AppError types to HTTP status codes and problem types.
var appErrorStatus = map[ErrorType]struct {
	status      int
	problemType string
	title       string
}{
	ErrTypeFileFormat:    {http.StatusUnprocessableEntity, TypeIngestFileFormat, "Workbook Unreadable"},
	ErrTypeNoValidSheet:  {http.StatusUnprocessableEntity, TypeIngestNoSheet, "No Valid Sheet"},
	ErrTypeMissingColumn: {http.StatusUnprocessableEntity, TypeIngestMissingColumn, "Missing Columns"},
	ErrTypeSheet:         {http.StatusUnprocessableEntity, TypeIngestSheet, "Sheet Processing Failed"},
	ErrTypeEmptyResult:   {http.StatusUnprocessableEntity, TypeIngestEmpty, "No Valid Rows"},
	ErrTypeStorage:       {http.StatusInternalServerError, TypeStorage, "Storage Failure"},
	ErrTypeBackup:        {http.StatusInternalServerError, TypeStorage, "Backup Failure"},
	ErrTypeNetwork:       {http.StatusBadGateway, TypeStorage, "Remote Store Unreachable"},
	ErrTypeValidation:    {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeNotFound:      {http.StatusNotFound, TypeNotFound, "Resource Not Found"},
	ErrTypeConfig:        {http.StatusInternalServerError, TypeInternal, "Configuration Error"},
}

// MapAppError converts an AppError into a problem document. Operator-facing
// messages are passed through as the detail; context entries become
// extensions.
func MapAppError(err error, traceID, instance string) (*ProblemDetails, bool) {
	var ae *AppError
	if !errors.As(err, &ae) {
		return nil, false
	}

	m, ok := appErrorStatus[ae.Type]
	if !ok {
		m = appErrorStatus[ErrTypeConfig]
	}

	detail := ae.Message
	if m.status >= http.StatusInternalServerError && ae.Cause != nil {
		detail = ae.Error()
	}

	problem := NewProblemDetails(m.status, m.problemType, m.title, detail, instance).
		WithExtension("error_type", string(ae.Type))
	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	for k, v := range ae.Context {
		problem.WithExtension(k, v)
	}
	return problem, true
}
