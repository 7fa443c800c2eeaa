package errors

import (
	stdErrors "errors"
	"fmt"
)

// Error is a coded error. Sentinels are declared with New and instantiated
// per failure with Extend so callers can match them with errors.Is.
type Error struct {
	code    Code
	message string
	details any
	cause   error
	kind    *Error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err degrades to New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Extend copies the sentinel's code and message onto a new error carrying
// cause. The result matches kind under errors.Is and unwraps to cause.
func Extend(kind *Error, cause error) *Error {
	if kind == nil {
		return Wrap(CodeInternal, cause, "internal error")
	}
	root := kind
	if kind.kind != nil {
		root = kind.kind
	}
	return &Error{code: kind.code, message: kind.message, cause: cause, kind: root}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails mutates e. Call it on errors built with New, Wrap or Extend,
// never on a shared sentinel.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches errors created by Extend against their sentinel.
func (e *Error) Is(target error) bool {
	if e == nil || e.kind == nil {
		return false
	}
	t, ok := target.(*Error)
	return ok && t == e.kind
}

// As returns the outermost *Error in the chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	return As(err).Code()
}
