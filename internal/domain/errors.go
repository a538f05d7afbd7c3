package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures reported by the booking and item services.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidationFailed  ErrorKind = "VALIDATION_FAILED"
	KindCapacityExceeded  ErrorKind = "CAPACITY_EXCEEDED"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindDependencyFailure ErrorKind = "DEPENDENCY_FAILURE"
)

// Sentinels for errors.Is; every *Error matches the sentinel of its kind.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidationFailed  = errors.New("validation failed")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDependencyFailure = errors.New("dependency failure")
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:          ErrNotFound,
	KindValidationFailed:  ErrValidationFailed,
	KindCapacityExceeded:  ErrCapacityExceeded,
	KindInvalidTransition: ErrInvalidTransition,
	KindDependencyFailure: ErrDependencyFailure,
}

// Error is the typed failure returned across the service boundary.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func NotFoundError(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func ValidationError(op, format string, args ...any) error {
	return &Error{Kind: KindValidationFailed, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func CapacityError(op, format string, args ...any) error {
	return &Error{Kind: KindCapacityExceeded, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// TransitionError names the attempted event and the state it was attempted from.
func TransitionError(event BookingEvent, from BookingStatus) error {
	return &Error{
		Kind: KindInvalidTransition,
		Op:   string(event),
		Msg:  fmt.Sprintf("cannot %s a booking in status %s", event, from),
	}
}

// DependencyError wraps a storage or rate-lookup failure. Errors that already
// carry a kind pass through untouched so a NotFound from a store stays NotFound.
func DependencyError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindDependencyFailure, Op: op, Err: err}
}

// KindOf extracts the kind of err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
