// Package apperror defines the error taxonomy shared by the intake services,
// their HTTP handlers and the intake client.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind is the category an error belongs to. It decides the HTTP status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
	KindQuery      Kind = "query"
)

// Code is a stable machine readable identifier carried over the wire.
type Code string

const (
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeMissingMandatory  Code = "MISSING_MANDATORY_DOCUMENTS"
	CodeNoDocuments       Code = "NO_DOCUMENTS"
	CodeInvalidFile       Code = "INVALID_FILE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeStorageFailed     Code = "STORAGE_FAILED"
	CodePlacementFailed   Code = "PLACEMENT_FAILED"
	CodeQueryFailed       Code = "QUERY_FAILED"
	CodeUnexpectedFailure Code = "UNEXPECTED_FAILURE"
)

// Error is a structured application error.
type Error struct {
	Kind      Kind
	Code      Code
	Message   string
	Details   []string
	Timestamp time.Time
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same Kind and, when set, the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// WithDetails returns a copy of e carrying extra human readable details.
func (e *Error) WithDetails(details ...string) *Error {
	cp := *e
	cp.Details = append(append([]string(nil), e.Details...), details...)
	return &cp
}

func newError(kind Kind, code Code, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func Validation(code Code, message string, details ...string) *Error {
	if code == "" {
		code = CodeValidationFailed
	}
	e := newError(KindValidation, code, message, nil)
	e.Details = details
	return e
}

func NotFound(message string) *Error {
	return newError(KindNotFound, CodeNotFound, message, nil)
}

func Storage(message string, cause error) *Error {
	return newError(KindStorage, CodeStorageFailed, message, cause)
}

// Placement reports a failed move of a staged file into its final location.
// It is a StorageError with a dedicated code.
func Placement(message string, cause error) *Error {
	return newError(KindStorage, CodePlacementFailed, message, cause)
}

func Query(message string, cause error) *Error {
	return newError(KindQuery, CodeQueryFailed, message, cause)
}

// Sentinels for errors.Is checks on kind only.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrStorage    = &Error{Kind: KindStorage}
	ErrPlacement  = &Error{Kind: KindStorage, Code: CodePlacementFailed}
	ErrQuery      = &Error{Kind: KindQuery}
)

// As extracts the *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, treating foreign errors as query failures.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindQuery
}

// StatusCode maps err to the HTTP status used by the API.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus rebuilds an *Error from an API error response.
func FromStatus(status int, code Code, message string, details []string) *Error {
	var kind Kind
	switch {
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindValidation
	case code == CodeStorageFailed || code == CodePlacementFailed:
		kind = KindStorage
	default:
		kind = KindQuery
	}
	if code == "" {
		code = CodeUnexpectedFailure
	}
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
	}
	e := newError(kind, code, message, nil)
	e.Details = details
	return e
}
