// Package errors defines the coded errors polytree returns.
//
// Every failure caused by bad input carries a [Code], so the CLI can print
// a readable message and the server can pick a status without matching on
// strings:
//
//	err := errors.New(errors.ErrCodeInvalidSymbol, "ignored unit must be a letter, got %q", u)
//	if errors.Is(err, errors.ErrCodeInvalidSymbol) {
//		...
//	}
//
// Codes named INVALID_* reject input, *_NOT_FOUND name a missing preset or
// file, and the rest report problems on our side.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidSymbol    Code = "INVALID_SYMBOL"
	ErrCodeInvalidLicense   Code = "INVALID_LICENSE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType   Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidKind      Code = "INVALID_KIND"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidPreset    Code = "INVALID_PRESET"
	ErrCodeInputTooLarge    Code = "INPUT_TOO_LARGE"

	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodePresetNotFound Code = "PRESET_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a Code with a message and, for wrapped failures, a cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is New with a cause, which errors.Is and errors.As can reach.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether GetCode(err) is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage drops the code prefix and cause, leaving the text meant for
// a person. Errors without a code are returned as they are.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to a response status. Uncoded errors are 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodePresetNotFound:
		return http.StatusNotFound
	case ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case "", ErrCodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
