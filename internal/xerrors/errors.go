package xerrors

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

type Error struct {
	StatusCode     int
	Message        string
	Cause          error
	RetryAfter     time.Duration
	AllowedMethods []string
	Expected       string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func BadRequest(opts ...Option) *Error         { return newErr(http.StatusBadRequest, opts) }
func Unauthorized(opts ...Option) *Error       { return newErr(http.StatusUnauthorized, opts) }
func MethodNotAllowed(opts ...Option) *Error   { return newErr(http.StatusMethodNotAllowed, opts) }
func TooManyRequests(opts ...Option) *Error    { return newErr(http.StatusTooManyRequests, opts) }
func Internal(opts ...Option) *Error           { return newErr(http.StatusInternalServerError, opts) }
func ServiceUnavailable(opts ...Option) *Error { return newErr(http.StatusServiceUnavailable, opts) }

func newErr(status int, opts []Option) *Error {
	e := &Error{StatusCode: status, Message: strings.ToLower(http.StatusText(status))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }
func WithCause(err error) Option    { return func(e *Error) { e.Cause = err } }

func WithRetryAfter(d time.Duration) Option {
	return func(e *Error) { e.RetryAfter = d }
}

func WithAllowedMethods(methods ...string) Option {
	return func(e *Error) { e.AllowedMethods = methods }
}

// WithExpected attaches a description of the payload shape the endpoint
// expected, echoed in the diagnostic response body.
func WithExpected(expected string) Option {
	return func(e *Error) { e.Expected = expected }
}

func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
