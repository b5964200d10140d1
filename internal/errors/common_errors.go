package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileFormat    ErrorType = "FILE_FORMAT"
	ErrTypeNoValidSheet  ErrorType = "NO_VALID_SHEET"
	ErrTypeMissingColumn ErrorType = "MISSING_COLUMN"
	ErrTypeEmptyResult   ErrorType = "EMPTY_RESULT"
	ErrTypeSheet         ErrorType = "SHEET"
	ErrTypeStorage       ErrorType = "STORAGE"
	ErrTypeBackup        ErrorType = "BACKUP"
	ErrTypeNetwork       ErrorType = "NETWORK"
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeNotFound      ErrorType = "NOT_FOUND"
	ErrTypeConfig        ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type, so typed sentinels can be
// compared with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Ingestion errors carry the operator-facing message verbatim.

// NewFileFormatError reports a workbook that could not be read at all.
func NewFileFormatError(cause error) *AppError {
	msg := "Error membaca file"
	if cause != nil {
		msg = fmt.Sprintf("Error membaca file: %v", cause)
	}
	return NewAppError(ErrTypeFileFormat, msg, nil)
}

// NewNoValidSheetError reports a workbook without any allow-listed sheet.
func NewNoValidSheetError(allowed []string) *AppError {
	return NewAppError(ErrTypeNoValidSheet,
		fmt.Sprintf("Tidak ditemukan sheet yang valid. Sheet harus salah satu dari: %s", strings.Join(allowed, ", ")),
		nil).WithContext("allowed_sheets", allowed)
}

// NewMissingColumnError reports a sheet lacking required columns.
func NewMissingColumnError(sheet string, missing []string) *AppError {
	return NewAppError(ErrTypeMissingColumn,
		fmt.Sprintf("Sheet '%s' kehilangan kolom: %s", sheet, strings.Join(missing, ", ")),
		nil).WithContext("sheet", sheet).WithContext("missing_columns", missing)
}

// NewSheetError reports an unexpected failure while processing one sheet.
func NewSheetError(sheet string, cause error) *AppError {
	return NewAppError(ErrTypeSheet,
		fmt.Sprintf("Error memproses sheet '%s': %v", sheet, cause),
		nil).WithContext("sheet", sheet)
}

// NewEmptyResultError reports that no row survived filtering.
func NewEmptyResultError() *AppError {
	return NewAppError(ErrTypeEmptyResult, "Tidak ada data valid yang ditemukan dalam file", nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewBackupError creates a backup error. Backup errors never abort a save.
func NewBackupError(message string, cause error) *AppError {
	return NewAppError(ErrTypeBackup, message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsIngestRejection reports whether err describes a workbook the pipeline
// refused, as opposed to an infrastructure failure.
func IsIngestRejection(err error) bool {
	switch TypeOf(err) {
	case ErrTypeFileFormat, ErrTypeNoValidSheet, ErrTypeMissingColumn, ErrTypeEmptyResult, ErrTypeSheet:
		return true
	}
	return false
}
