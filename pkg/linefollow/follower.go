// Package linefollow drives the tank along a line until it reaches the next node.
package linefollow

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of following a line segment.
type Result int

const (
	ArrivedAtNode Result = iota
	TimedOut
)

func (r Result) String() string {
	switch r {
	case ArrivedAtNode:
		return "ARRIVED_AT_NODE"
	case TimedOut:
		return "TIMED_OUT"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Strategy is the steering bias applied while the line is lost.
type Strategy int

const (
	StrategyDefault Strategy = iota
	StrategyRotateRight
	StrategyRotateLeft
)

func (s Strategy) String() string {
	switch s {
	case StrategyDefault:
		return "DEFAULT"
	case StrategyRotateRight:
		return "ROTATE_RIGHT"
	case StrategyRotateLeft:
		return "ROTATE_LEFT"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Sensor reads the IR sensor array.
type Sensor interface {
	Read(ctx context.Context) (Reading, error)
}

// Drive sets track speeds in the normalized range [-100, 100].
type Drive interface {
	Drive(ctx context.Context, left, right float64) error
	Stop(ctx context.Context) error
}

// Sample is one control step, reported to the sample callback.
type Sample struct {
	Reading  Reading
	Offset   float64
	OnLine   bool
	Left     float64
	Right    float64
	Strategy Strategy
	Time     time.Time
}

// Config holds tuning for the follower.
type Config struct {
	Hz             int
	Speed          float64       // base track speed, 0..100
	Gain           float64       // steering gain applied to the offset
	SearchSpeed    float64       // spin speed while searching for the line
	LostTimeout    time.Duration // give up when the line is lost this long
	SegmentTimeout time.Duration // give up on a segment after this long, 0 disables
}

// Follower follows the line between nodes.
type Follower struct {
	sensor Sensor
	drive  Drive
	cfg    Config

	mu       sync.Mutex
	strategy Strategy
	onSample func(Sample)
}

// NewFollower creates a follower. Zero config fields get defaults.
func NewFollower(sensor Sensor, drive Drive, cfg Config) *Follower {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}
	if cfg.Speed == 0 {
		cfg.Speed = 40
	}
	if cfg.Gain == 0 {
		cfg.Gain = 0.8
	}
	if cfg.SearchSpeed == 0 {
		cfg.SearchSpeed = 30
	}
	if cfg.LostTimeout <= 0 {
		cfg.LostTimeout = 2 * time.Second
	}
	return &Follower{
		sensor: sensor,
		drive:  drive,
		cfg:    cfg,
	}
}

// OnSample registers a callback invoked for every control step.
func (f *Follower) OnSample(fn func(Sample)) {
	f.mu.Lock()
	f.onSample = fn
	f.mu.Unlock()
}

// ChangeStrategy selects the steering strategy for the next segment.
func (f *Follower) ChangeStrategy(s Strategy) {
	f.mu.Lock()
	f.strategy = s
	f.mu.Unlock()
}

// Strategy returns the current strategy.
func (f *Follower) Strategy() Strategy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strategy
}

// FollowToNextNode follows the line until a node marker is reached or the
// line is lost for too long. The tracks are stopped before it returns.
// A node marker under the tank at the start of the segment is ignored until
// the tank has left it.
func (f *Follower) FollowToNextNode(ctx context.Context) (res Result, err error) {
	defer func() {
		if stopErr := f.drive.Stop(context.Background()); stopErr != nil && err == nil {
			err = fmt.Errorf("stop tracks: %w", stopErr)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(f.cfg.Hz))
	defer ticker.Stop()

	start := time.Now()
	lastSeen := start
	leftNode := false

	for {
		select {
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()
		if f.cfg.SegmentTimeout > 0 && now.Sub(start) > f.cfg.SegmentTimeout {
			return TimedOut, nil
		}

		reading, err := f.sensor.Read(ctx)
		if err != nil {
			return TimedOut, fmt.Errorf("read sensor: %w", err)
		}

		if reading.AtNode() {
			if leftNode {
				return ArrivedAtNode, nil
			}
		} else {
			leftNode = true
		}

		offset, onLine := reading.Offset()
		if onLine {
			lastSeen = now
		} else if now.Sub(lastSeen) > f.cfg.LostTimeout {
			return TimedOut, nil
		}

		left, right := f.steer(offset, onLine)
		if err := f.drive.Drive(ctx, left, right); err != nil {
			return TimedOut, fmt.Errorf("drive tracks: %w", err)
		}

		f.report(Sample{
			Reading:  reading,
			Offset:   offset,
			OnLine:   onLine,
			Left:     left,
			Right:    right,
			Strategy: f.Strategy(),
			Time:     now,
		})
	}
}

// steer computes track speeds for one step. A rotate strategy spins toward
// its side while the line is lost and reverts to default once it is found.
func (f *Follower) steer(offset float64, onLine bool) (left, right float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if onLine {
		f.strategy = StrategyDefault
		turn := f.cfg.Gain * offset * f.cfg.Speed
		return clamp(f.cfg.Speed + turn), clamp(f.cfg.Speed - turn)
	}

	switch f.strategy {
	case StrategyRotateRight:
		return f.cfg.SearchSpeed, -f.cfg.SearchSpeed
	case StrategyRotateLeft:
		return -f.cfg.SearchSpeed, f.cfg.SearchSpeed
	default:
		// Creep straight ahead hoping to pick the line up again
		return f.cfg.Speed / 2, f.cfg.Speed / 2
	}
}

func (f *Follower) report(s Sample) {
	f.mu.Lock()
	fn := f.onSample
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}
