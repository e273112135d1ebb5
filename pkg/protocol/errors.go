package protocol

import (
	"errors"
	"fmt"
)

// Decode errors.
var (
	// ErrUnknownEvent is returned for an event name outside the catalogue.
	ErrUnknownEvent = errors.New("protocol: unknown event")

	// ErrUnknownOperation is returned by Parse for an unknown operation name.
	ErrUnknownOperation = errors.New("protocol: unknown operation")

	// ErrArgumentCount is returned when a known name carries the wrong
	// number of arguments.
	ErrArgumentCount = errors.New("protocol: wrong argument count")

	// ErrInvalidArgument is returned when an argument cannot be parsed.
	ErrInvalidArgument = errors.New("protocol: invalid argument")

	// ErrEmptyCommand is returned when a command has no tokens.
	ErrEmptyCommand = errors.New("protocol: empty command")
)

// DecodeError reports which named event or operation failed to decode.
type DecodeError struct {
	Name   string // Event or operation name as received
	Detail string // Human-readable context
	Err    error  // One of the sentinel errors above
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Name)
	}
	return fmt.Sprintf("%v: %q: %s", e.Err, e.Name, e.Detail)
}

// Unwrap returns the underlying sentinel for errors.Is.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func argCountError(name string, got int, want string) *DecodeError {
	return &DecodeError{
		Name:   name,
		Detail: fmt.Sprintf("got %d arguments, want %s", got, want),
		Err:    ErrArgumentCount,
	}
}

func invalidArgError(name string, index int, value string) *DecodeError {
	return &DecodeError{
		Name:   name,
		Detail: fmt.Sprintf("argument %d: %q", index, value),
		Err:    ErrInvalidArgument,
	}
}
