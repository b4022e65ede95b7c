package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError so the web layer can map it to a
// response without string matching.
type ErrorKind string

const (
	KindBadRequest    ErrorKind = "bad_request"
	KindNotFound      ErrorKind = "not_found"
	KindExtraction    ErrorKind = "extraction_error"
	KindStorage       ErrorKind = "storage_error"
	KindConfiguration ErrorKind = "configuration_error"
	KindInternal      ErrorKind = "internal_error"
)

// AppError is the error type that crosses the service boundary.
type AppError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Kind: KindBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Kind: KindInternal, Message: message}
}

// NewExtractionError wraps a failure of the layout or structured-field
// extraction collaborators. Not recoverable locally.
func NewExtractionError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusUnprocessableEntity, Kind: KindExtraction, Message: message, Err: err}
}

// NewStorageError wraps a forensic store read/write failure. Surfaced, never
// swallowed, since duplicate detection correctness depends on it.
func NewStorageError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Kind: KindStorage, Message: message, Err: err}
}

// NewConfigurationError reports a missing external capability, e.g. an
// unset AI API key. Fails fast before any analysis work.
func NewConfigurationError(message string) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Kind: KindConfiguration, Message: message}
}
