package nav

import (
	"errors"
	"fmt"

	"github.com/gwillem/linetank/pkg/direction"
)

// State is the navigator's current phase.
type State int

const (
	StateInitializing State = iota
	StateError
	StateLineFollowing
	StateAtNode
	StateReadyToDepart
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateError:
		return "ERROR"
	case StateLineFollowing:
		return "LINE_FOLLOWING"
	case StateAtNode:
		return "AT_NODE"
	case StateReadyToDepart:
		return "READY_TO_DEPART"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fault categorizes why the navigator entered StateError.
type Fault int

const (
	FaultNone Fault = iota
	FaultTimeout
	FaultUnresolvableOrientation
	FaultHardware
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultTimeout:
		return "timeout"
	case FaultUnresolvableOrientation:
		return "unresolvable orientation"
	case FaultHardware:
		return "hardware"
	default:
		return fmt.Sprintf("Fault(%d)", int(f))
	}
}

var (
	// ErrTimedOut means line following did not reach a node.
	ErrTimedOut = errors.New("line following timed out")
	// ErrUnresolvableOrientation means the departure could not be expressed
	// relative to the facing direction.
	ErrUnresolvableOrientation = errors.New("unresolvable orientation")
)

// Status is a snapshot of the navigator's state and directions.
type Status struct {
	State State
	Fault Fault

	// Facing is the direction the tank faced when it last arrived at a node.
	Facing direction.Direction
	// LastDeparture is recorded after a departure maneuver completes. Nothing
	// reads it; it is kept for a future planner.
	LastDeparture direction.Direction
	// NextDeparture is the direction chosen for the upcoming departure.
	NextDeparture direction.Direction

	Nodes int // nodes reached since start
}

func newStatus() Status {
	return Status{
		State:         StateInitializing,
		Facing:        direction.Unknown,
		LastDeparture: direction.Unknown,
		NextDeparture: direction.Unknown,
	}
}
