// Package apperr defines the error taxonomy shared by the engine, the stores
// and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindStorage      Kind = "storage"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is a classified failure. Step names the operation that failed when
// the error comes out of a multi-step sequence.
type Error struct {
	Kind    Kind
	Step    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Step != "" {
		msg = e.Step + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrEmptyTemplate    = &Error{Kind: KindInvalidState, Message: "Template has no tasks"}
	ErrAlreadyActivated = &Error{Kind: KindInvalidState, Message: "Already activated"}
)

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Storage wraps a data-store failure raised while performing step.
func Storage(step string, err error) *Error {
	return &Error{Kind: KindStorage, Step: step, Message: "storage operation failed", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// Status maps err to the HTTP status reported to clients.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
