package resource

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrAlreadySetup is returned when a resource parameter that is transmitted
// at creation time is changed after the resource was set up.
var ErrAlreadySetup = errors.New("resource: already set up")

// State is the lifecycle state of an identified resource.
type State uint8

const (
	// PendingTransmission: created locally, never set up.
	PendingTransmission State = iota
	// TransmissionQueued: creation command queued for the next flush.
	TransmissionQueued
	// ProcessedByClient: the renderer accepted the creation command.
	ProcessedByClient
	// Ready: the renderer finished constructing the resource.
	Ready
	// ResourceError: the renderer could not construct the resource.
	ResourceError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case PendingTransmission:
		return "pendingTransmission"
	case TransmissionQueued:
		return "transmissionQueued"
	case ProcessedByClient:
		return "processedByClient"
	case Ready:
		return "ready"
	case ResourceError:
		return "resourceError"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are expected.
func (s State) Terminal() bool {
	return s == Ready || s == ResourceError
}

// rank orders states; Ready and ResourceError are alternative outcomes and
// share the final rank.
func (s State) rank() int {
	if s == ResourceError {
		return int(Ready)
	}
	return int(s)
}

// Follows reports whether moving from cur to next is forward progress.
func (s State) Follows(cur State) bool {
	return s.rank() > cur.rank()
}

// Lifecycle carries the identifier and state shared by every resource kind.
// It is embedded in the concrete resource types. Like the rest of a
// session's state it is only touched from the session's own goroutine.
type Lifecycle struct {
	id    string
	state State
}

func newLifecycle() Lifecycle {
	return Lifecycle{id: uuid.NewString()}
}

// ID returns the identifier minted when the resource was created.
func (l *Lifecycle) ID() string { return l.id }

// State returns the current lifecycle state.
func (l *Lifecycle) State() State { return l.state }

// IsReady reports whether the renderer finished constructing the resource.
func (l *Lifecycle) IsReady() bool { return l.state == Ready }

// IsResourceError reports whether the renderer failed to construct it.
func (l *Lifecycle) IsResourceError() bool { return l.state == ResourceError }

// Advance moves the resource to next. A transition that is not forward
// progress is logged as a regression and applied anyway; Advance returns
// false in that case.
func (l *Lifecycle) Advance(next State, logger *slog.Logger) bool {
	cur := l.state
	l.state = next
	if next.Follows(cur) {
		return true
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("resource state regression",
		"resource_id", l.id,
		"from", cur.String(),
		"to", next.String(),
	)
	return false
}
