// Package nav implements the tank's navigation state machine: follow a line
// to the next node, decide how to leave it, and depart.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gwillem/linetank/pkg/direction"
	"github.com/gwillem/linetank/pkg/linefollow"
)

// LineFollower follows the line to the next node.
type LineFollower interface {
	FollowToNextNode(ctx context.Context) (linefollow.Result, error)
	ChangeStrategy(s linefollow.Strategy)
}

// Mover performs the departure maneuver at a node. It blocks until the
// maneuver is complete.
type Mover interface {
	NodeDeparture(ctx context.Context, rel direction.Relative) error
}

// OrientationSource decides, at a node, which way the tank is facing and
// which way it should leave. Directions that cannot be determined are
// returned as direction.Unknown. The call may block indefinitely.
type OrientationSource interface {
	Orientation(ctx context.Context) (facing, departure direction.Direction, err error)
}

// Observer is notified of navigation events, e.g. to record metrics.
type Observer interface {
	Transition(from, to State)
	NodeArrived()
	Faulted(f Fault)
}

type nopObserver struct{}

func (nopObserver) Transition(from, to State) {}
func (nopObserver) NodeArrived()              {}
func (nopObserver) Faulted(f Fault)           {}

// Config holds the navigator's collaborators.
type Config struct {
	Follower     LineFollower
	Mover        Mover
	Orientation  OrientationSource
	Logger       *slog.Logger
	Observer     Observer
	IdleInterval time.Duration // pause between checks while in StateError
}

// Navigator runs the navigation state machine. Its state is written only by
// the goroutine that calls Run or Step; other goroutines read snapshots
// through Status or the States channel.
type Navigator struct {
	follower LineFollower
	mover    Mover
	source   OrientationSource
	logger   *slog.Logger
	observer Observer
	idle     time.Duration

	mu     sync.RWMutex
	status Status
	err    error

	stateCh chan Status
	logCh   chan string
}

// New creates a navigator in StateInitializing.
func New(cfg Config) (*Navigator, error) {
	if cfg.Follower == nil {
		return nil, errors.New("nav: line follower is required")
	}
	if cfg.Mover == nil {
		return nil, errors.New("nav: mover is required")
	}
	if cfg.Orientation == nil {
		return nil, errors.New("nav: orientation source is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = time.Second
	}

	return &Navigator{
		follower: cfg.Follower,
		mover:    cfg.Mover,
		source:   cfg.Orientation,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		idle:     cfg.IdleInterval,
		status:   newStatus(),
		stateCh:  make(chan Status, 1),
		logCh:    make(chan string, 32),
	}, nil
}

// Status returns a snapshot of the current status.
func (n *Navigator) Status() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// Err returns the cause of the fault that put the navigator in StateError,
// or nil.
func (n *Navigator) Err() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.err
}

// States returns a channel that receives the latest status after each change.
func (n *Navigator) States() <-chan Status {
	return n.stateCh
}

// Logs returns a channel that receives status lines.
func (n *Navigator) Logs() <-chan string {
	return n.logCh
}

// Run starts navigation and steps the state machine until ctx is cancelled.
// StateError has no exit: the loop keeps idling in it.
func (n *Navigator) Run(ctx context.Context) error {
	n.Start()
	for {
		if err := ctx.Err(); err != nil {
			n.log("Navigation stopped")
			return err
		}
		n.Step(ctx)
	}
}

// Start leaves StateInitializing and begins line following.
func (n *Navigator) Start() {
	if n.Status().State == StateInitializing {
		n.switchState(StateLineFollowing)
	}
}

// Step runs the handler for the current state once.
func (n *Navigator) Step(ctx context.Context) {
	switch n.Status().State {
	case StateInitializing:
		n.Start()
	case StateLineFollowing:
		n.log("Starting line following step")
		n.LineFollowStep(ctx)
	case StateReadyToDepart:
		n.log("Starting departure")
		n.Depart(ctx)
	case StateError:
		n.ErrorIdle(ctx)
	}
}

// LineFollowStep follows the line to the next node and handles the arrival.
// A timeout puts the navigator in StateError.
func (n *Navigator) LineFollowStep(ctx context.Context) {
	if !n.expect(StateLineFollowing) {
		return
	}

	res, err := n.follower.FollowToNextNode(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		n.fail(FaultHardware, fmt.Errorf("follow line: %w", err))
		return
	}

	switch res {
	case linefollow.ArrivedAtNode:
		n.onNodeArrival(ctx)
	case linefollow.TimedOut:
		n.fail(FaultTimeout, ErrTimedOut)
	}
}

// onNodeArrival asks the orientation source for the facing and departure
// directions and readies the departure. A failing source leaves both
// directions unknown, which the departure step turns into StateError.
func (n *Navigator) onNodeArrival(ctx context.Context) {
	n.switchState(StateAtNode)
	n.mu.Lock()
	n.status.Nodes++
	n.mu.Unlock()
	n.observer.NodeArrived()

	facing, departure, err := n.source.Orientation(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		n.logger.Warn("orientation unavailable", "error", err)
		facing, departure = direction.Unknown, direction.Unknown
	}

	n.mu.Lock()
	n.status.Facing = facing
	n.status.NextDeparture = departure
	n.mu.Unlock()

	n.log("Facing %v", facing)
	n.log("Next departure direction: %v", departure)
	n.switchState(StateReadyToDepart)
}

// Depart turns toward the chosen departure direction and resumes line
// following. Turning right or left selects the matching rotate strategy;
// ahead and behind leave the strategy unchanged.
func (n *Navigator) Depart(ctx context.Context) {
	if !n.expect(StateReadyToDepart) {
		return
	}

	st := n.Status()
	rel := direction.RelativeTo(st.Facing, st.NextDeparture)
	if rel == direction.RelativeUnknown {
		n.fail(FaultUnresolvableOrientation, fmt.Errorf("%w: facing %v, departing %v",
			ErrUnresolvableOrientation, st.Facing, st.NextDeparture))
		return
	}

	n.log("Departing %v", rel)
	if err := n.mover.NodeDeparture(ctx, rel); err != nil {
		if ctx.Err() != nil {
			return
		}
		n.fail(FaultHardware, fmt.Errorf("node departure: %w", err))
		return
	}

	n.mu.Lock()
	n.status.LastDeparture = st.NextDeparture
	n.mu.Unlock()

	switch rel {
	case direction.Right:
		n.follower.ChangeStrategy(linefollow.StrategyRotateRight)
	case direction.Left:
		n.follower.ChangeStrategy(linefollow.StrategyRotateLeft)
	}

	n.switchState(StateLineFollowing)
}

// ErrorIdle logs the error state and waits one idle interval. It never
// leaves StateError.
func (n *Navigator) ErrorIdle(ctx context.Context) {
	if !n.expect(StateError) {
		return
	}

	n.log("!!! ERROR STATE !!!")

	t := time.NewTimer(n.idle)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (n *Navigator) expect(s State) bool {
	cur := n.Status().State
	if cur != s {
		n.logger.Debug("handler skipped", "want", s, "state", cur)
		return false
	}
	return true
}

func (n *Navigator) switchState(s State) {
	n.mu.Lock()
	from := n.status.State
	n.status.State = s
	snapshot := n.status
	n.mu.Unlock()

	n.log("New state: %v", s)
	n.observer.Transition(from, s)
	n.sendState(snapshot)
}

func (n *Navigator) fail(f Fault, err error) {
	n.mu.Lock()
	n.status.Fault = f
	n.err = err
	n.mu.Unlock()

	n.logger.Error("navigation fault", "fault", f, "error", err)
	n.pushLog(fmt.Sprintf("Fault (%v): %v", f, err))
	n.observer.Faulted(f)
	n.switchState(StateError)
}

func (n *Navigator) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n.logger.Info(msg)
	n.pushLog(msg)
}

func (n *Navigator) pushLog(msg string) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	select {
	case n.logCh <- line:
	default:
		// Drop if channel full
	}
}

func (n *Navigator) sendState(s Status) {
	select {
	case n.stateCh <- s:
	default:
		// Replace the stale snapshot with the new one
		select {
		case <-n.stateCh:
		default:
		}
		select {
		case n.stateCh <- s:
		default:
		}
	}
}
