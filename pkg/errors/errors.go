// Package errors defines AppError, the structured error type carried across
// every layer of the identifier normalization service (domain, application,
// infrastructure, interfaces), so HTTP responses, logs, and metrics all key
// off the same typed error codes instead of parsing error strings.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackFrameLimit bounds how many frames a captured stack trace can hold.
const stackFrameLimit = 32

// captureStack renders the call stack starting skip+2 frames above its own
// caller (past captureStack and the New/Wrap factory that invoked it),
// dropping runtime-package frames to keep the trace focused on application
// code.
func captureStack(skip int) string {
	pc := make([]uintptr, stackFrameLimit)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return b.String()
}

// AppError is the one error type every layer constructs and propagates. It
// carries a typed code for programmatic dispatch (HTTP status mapping,
// metric labels, retry decisions), a caller-facing message, optional
// debugging detail, and the lower-level cause it wraps, if any.
//
//	return errors.New(errors.CodeCurieInvalid, "empty curie")
//	return errors.Wrap(storeErr, errors.CodeStoreUnavailable, "eq_to_canonical lookup failed")
//	return errors.NotFound("canonical clique for MONDO:0005002").WithDetail("checked redis and postgres")
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string
	Cause   error

	// Stack holds the call stack at construction time. It never appears in
	// Error()'s output — API responses built from AppError.Error() should
	// stay clean — but is available to anything that inspects the struct
	// directly, such as a logging middleware.
	Stack string
}

func newAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Stack: captureStack(2)}
}

// Error satisfies the standard error interface: "[NAME(code)] message" or
// "[NAME(code)] message: detail" when Detail is set.
func (e *AppError) Error() string {
	base := fmt.Sprintf("[%s(%d)] %s", e.Code.String(), int(e.Code), e.Message)
	if e.Detail == "" {
		return base
	}
	return base + ": " + e.Detail
}

// Unwrap exposes Cause so errors.Is and errors.As traverse through an
// AppError without any boilerplate at the call site.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e with Detail set. Safe to call on nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	out := *e
	out.Detail = detail
	return &out
}

// WithCause returns a copy of e with Cause set to err, for attaching a
// lower-level error after the AppError was already built.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	out := *e
	out.Cause = err
	return &out
}

// New builds an AppError for a failure originating in the current layer,
// with no underlying cause to wrap.
func New(code ErrorCode, message string) *AppError {
	return newAppError(code, message)
}

// Wrap attaches code and message to err. A nil err yields a nil *AppError,
// so Wrap can sit inline in a return statement without an extra nil check:
//
//	return errors.Wrap(repo.FindByID(ctx, id), errors.CodeStoreUnavailable, "lookup failed")
//
// Passing CodeUnknown preserves err's own code when err is already an
// AppError, so adding context doesn't discard the original classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		if ae := asAppError(err); ae != nil {
			code = ae.Code
		}
	}
	wrapped := newAppError(code, message)
	wrapped.Cause = err
	return wrapped
}

func asAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// walkChain calls visit on every AppError found while unwrapping err,
// stopping at the first one visit accepts.
func walkChain(err error, visit func(*AppError) bool) bool {
	for err != nil {
		if ae := asAppError(err); ae != nil && visit(ae) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsCode reports whether err's chain contains an AppError with code.
func IsCode(err error, code ErrorCode) bool {
	return walkChain(err, func(ae *AppError) bool { return ae.Code == code })
}

// IsNotFound reports whether err's chain contains an AppError with
// CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// GetCode extracts the code of the first AppError in err's chain. It
// returns CodeOK for a nil error and CodeUnknown when err carries no
// AppError at all — callers that just need a label for a metric or log
// field can use this without a type switch.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	if ae := asAppError(err); ae != nil {
		return ae.Code
	}
	return CodeUnknown
}

// The remaining factories build an AppError for one of the common failure
// categories, so call sites read as:
//
//	return errors.NotFound("canonical clique")
//	return errors.InvalidParam("curie must not be empty")

// NotFound builds a CodeNotFound AppError.
func NotFound(message string) *AppError { return newAppError(CodeNotFound, message) }

// InvalidParam builds a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError { return newAppError(CodeInvalidParam, message) }

// InvalidState builds a CodeConflict AppError for domain state violations.
func InvalidState(message string) *AppError { return newAppError(CodeConflict, message) }

// Unauthorized builds a CodeUnauthorized AppError.
func Unauthorized(message string) *AppError { return newAppError(CodeUnauthorized, message) }

// Forbidden builds a CodeForbidden AppError.
func Forbidden(message string) *AppError { return newAppError(CodeForbidden, message) }

// Internal builds a CodeInternal AppError for unexpected server-side
// failures with no more specific code. Log the underlying cause alongside
// it; Internal itself only carries a caller-safe message.
func Internal(message string) *AppError { return newAppError(CodeInternal, message) }

// Conflict builds a CodeConflict AppError.
func Conflict(message string) *AppError { return newAppError(CodeConflict, message) }

// RateLimit builds a CodeRateLimit AppError.
func RateLimit(message string) *AppError { return newAppError(CodeRateLimit, message) }
