package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrQueueFull    = fmt.Errorf("dispatch queue full")
	ErrUnknownEvent = fmt.Errorf("unknown event type")
)

// ValidationError rejects a malformed displayName, room name, or message
// body. The offending connection receives an error event and stays open.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// NotFoundError rejects an event referencing an identity that is not
// joined, e.g. sendMessage before joinRoom. Non-fatal.
type NotFoundError struct {
	Reason string
}

func (e NotFoundError) Error() string { return e.Reason }

func NewNotFound(reason string) error {
	return NotFoundError{Reason: reason}
}

func IsNotFound(err error) bool {
	var n NotFoundError
	return errors.As(err, &n)
}

// InternalError wraps an unexpected fault inside a handler. It is caught
// at the per-command boundary and converted to a generic error event;
// it must never crash the dispatcher.
type InternalError struct {
	Cause error
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

func (e InternalError) Unwrap() error { return e.Cause }

// UserMessage maps an error to the text carried by the outbound error
// event. Internal details never leak to clients.
func UserMessage(err error) string {
	switch {
	case IsValidation(err), IsNotFound(err):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
