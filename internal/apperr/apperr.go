// Package apperr defines the closed set of error kinds the service core
// raises and the HTTP status each one maps to at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for the boundary.
type Kind int

const (
	// KindInternal is anything unexpected. Its message is never shown to callers.
	KindInternal Kind = iota
	// KindValidation means caller-supplied input is malformed or incomplete.
	KindValidation
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
)

// internalMessage is the only text callers see for KindInternal errors.
const internalMessage = "Internal server error"

// String returns a short lower-case name for logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// StatusCode maps a kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string

	// Details holds every violation when the error aggregates several
	// validation failures. Message is then the first of them.
	Details []string

	// Err is the underlying cause for KindInternal errors.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Details) > 1 {
		return strings.Join(e.Details, "; ")
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with a single message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationList returns a KindValidation error carrying every violation,
// in the order given.
func ValidationList(msgs []string) *Error {
	e := &Error{Kind: KindValidation, Details: append([]string(nil), msgs...)}
	if len(msgs) > 0 {
		e.Message = msgs[0]
	}
	return e
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of kind k.
func Is(err error, k Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == k
}

// PublicMessage returns the text safe to show callers for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return internalMessage
}

// PublicDetails returns the aggregated validation messages of err, if any.
func PublicDetails(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e.Details
	}
	return nil
}
