package xerrors

import (
	"errors"
	"net/http"
	"strings"
)

// Error is an HTTP-mappable failure. Code is a stable machine-readable
// identifier; Message is safe to show to callers.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

const (
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeValidation      = "validation_failed"
	CodeUpgradeRequired = "upgrade_required"
	CodeInternal        = "internal"
)

func BadRequest(opts ...Option) *Error {
	return newErr(http.StatusBadRequest, CodeBadRequest, opts)
}

func Unauthorized(opts ...Option) *Error {
	return newErr(http.StatusUnauthorized, CodeUnauthorized, opts)
}

func NotFound(opts ...Option) *Error {
	return newErr(http.StatusNotFound, CodeNotFound, opts)
}

func UpgradeRequired(opts ...Option) *Error {
	return newErr(http.StatusUpgradeRequired, CodeUpgradeRequired, opts)
}

func Internal(opts ...Option) *Error {
	return newErr(http.StatusInternalServerError, CodeInternal, opts)
}

// Validation reports per-field problems as 422.
func Validation(fields map[string]string, opts ...Option) *Error {
	e := newErr(http.StatusUnprocessableEntity, CodeValidation, opts)
	e.Fields = fields
	return e
}

func newErr(status int, code string, opts []Option) *Error {
	e := &Error{
		StatusCode: status,
		Code:       code,
		Message:    strings.ToLower(http.StatusText(status)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }
func WithCause(err error) Option    { return func(e *Error) { e.Cause = err } }
func WithCode(code string) Option   { return func(e *Error) { e.Code = code } }

func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
