package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure an API function can return.
type Kind int

const (
	KindTransport Kind = iota
	KindUnauthorized
	KindNotFound
	KindServer
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server_error"
	case KindValidation:
		return "validation"
	default:
		return "transport"
	}
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("internal server error")
	ErrValidation   = errors.New("invalid payload")
	ErrTransport    = errors.New("transport failure")
)

// Error is the single error type returned by the client. Message is the
// human readable text shown in status areas.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindNotFound:
		return target == ErrNotFound
	case KindServer:
		return target == ErrServer
	case KindValidation:
		return target == ErrValidation
	default:
		return target == ErrTransport
	}
}

// IsNotFound reports a 404, which list callers treat as an empty result.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// KindOf returns the kind of err, or KindTransport for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

func statusError(op operation, status int, body string) *Error {
	e := &Error{Op: op.key, Status: status}
	switch status {
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = fmt.Sprintf("%s failed: unauthorized", op.desc)
	case http.StatusNotFound:
		e.Kind = KindNotFound
		if op.id != "" {
			e.Message = fmt.Sprintf("%s not found for id %s", op.desc, op.id)
		} else {
			e.Message = fmt.Sprintf("%s not found", op.desc)
		}
	case http.StatusInternalServerError:
		e.Kind = KindServer
		e.Message = fmt.Sprintf("%s failed: internal server error", op.desc)
	default:
		e.Kind = KindTransport
		e.Message = fmt.Sprintf("%s failed: status=%d body=%s", op.desc, status, body)
	}
	return e
}

func transportError(op operation, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Op:      op.key,
		Message: fmt.Sprintf("%s failed: %v", op.desc, err),
		Err:     err,
	}
}

func validationError(op operation, err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op.key,
		Message: err.Error(),
		Err:     err,
	}
}
