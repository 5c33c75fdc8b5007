// Package serrors tags errors with the kind of failure an extraction request
// ran into, so the API can pick a status code without knowing where the error
// came from.
package serrors

import (
	"errors"
	"fmt"
)

// Kind names a class of request failure. Kinds are sentinels: compare them
// with errors.Is.
type Kind interface {
	error
	isKind()
}

type kind struct{ code string }

func (k kind) Error() string { return k.code }
func (k kind) isKind()       {}

// NewKind returns a Kind whose Error is code. The code is what API clients
// see in the "code" field of an error response.
func NewKind(code string) Kind { return kind{code: code} }

var (
	// ErrNotFound is an unknown route.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrUnauthorized is a missing, expired or forged bearer token.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrMethodNotAllowed is a known route called with the wrong method.
	ErrMethodNotAllowed = NewKind("METHOD_NOT_ALLOWED")
	// ErrBadRequest is a body that does not decode, or a request with no text.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrPayloadTooLarge is a body, text or batch over the configured limits.
	ErrPayloadTooLarge = NewKind("PAYLOAD_TOO_LARGE")
	// ErrRateLimited is a client over its request budget.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrInternal is everything else. Its details are never sent to clients.
	ErrInternal = NewKind("INTERNAL")
)

// KindOf returns the kind carried by err, or ErrInternal when it carries
// none. The outermost *Error wins, so a batch can re-wrap the error of one
// text without losing its kind. KindOf(nil) is nil.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) && e.kind != nil {
		return e.kind
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}

// Error is a failure of some Kind with a client-facing message and an
// optional cause. Both the kind and the cause match errors.Is and errors.As.
//
// Its text is "<message>: <cause>", dropping whichever part is empty, and
// falls back to the kind code.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With returns an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap is With plus a cause. The cause is logged, never shown to clients.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns an error of kind k with no message.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// links returns the kind and the cause, either of which may be nil.
func (e *Error) links() [2]error {
	return [2]error{e.kind, e.err}
}

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	for _, l := range e.links() {
		if l != nil && errors.Is(l, target) {
			return true
		}
	}

	return false
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	for _, l := range e.links() {
		if l != nil && errors.As(l, target) {
			return true
		}
	}

	return false
}

// Kind returns the kind of e, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-facing message of e.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped error, or nil.
func (e *Error) Cause() error { return e.err }
