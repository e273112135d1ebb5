package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for common connection and dispatch conditions.
var (
	// ErrConnectionClosed is returned when an operation needs an active connection.
	ErrConnectionClosed = errors.New("server: connection closed")

	// ErrInboundQueueFull is reported when an inbound frame is dropped because
	// the session loop is not keeping up.
	ErrInboundQueueFull = errors.New("server: inbound queue full")

	// ErrUnknownResource is reported for an acknowledgement naming an
	// identifier the session never set up.
	ErrUnknownResource = errors.New("server: unknown resource")

	// ErrResourceKindMismatch is reported when an acknowledgement's kind does
	// not match the registered resource, e.g. onAudioLoaded for an image.
	ErrResourceKindMismatch = errors.New("server: resource kind mismatch")

	// ErrMaxSessionsReached is returned when the maximum number of sessions is reached.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrNoPainter is returned when the server has no painter factory.
	ErrNoPainter = errors.New("server: no painter factory")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID uint64
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == 0 {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %d: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID uint64, op string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		Err:       err,
	}
}

// CallbackPanic records a panic raised by a Painter callback.
type CallbackPanic struct {
	SessionID uint64
	Callback  string
	Panic     any
	Stack     []byte
}

// Error returns the error message.
func (e *CallbackPanic) Error() string {
	return fmt.Sprintf("server: painter panic in session %d, callback %s: %v",
		e.SessionID, e.Callback, e.Panic)
}
