// Package movement provides the blocking maneuvers the tank performs at nodes.
package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/gwillem/linetank/pkg/direction"
)

// Drive sets track speeds in the normalized range [-100, 100].
type Drive interface {
	Drive(ctx context.Context, left, right float64) error
	Stop(ctx context.Context) error
}

// Config holds maneuver timing.
type Config struct {
	Speed float64       // track speed during maneuvers, 0..100
	Clear time.Duration // forward drive to leave the node marker
	Turn  time.Duration // pivot time for a quarter turn
}

// Routines performs node departures on a track drive.
type Routines struct {
	drive Drive
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRoutines creates movement routines. Zero config fields get defaults.
func NewRoutines(drive Drive, cfg Config) *Routines {
	if cfg.Speed == 0 {
		cfg.Speed = 40
	}
	if cfg.Clear == 0 {
		cfg.Clear = 300 * time.Millisecond
	}
	if cfg.Turn == 0 {
		cfg.Turn = 700 * time.Millisecond
	}
	return &Routines{
		drive: drive,
		cfg:   cfg,
		sleep: sleep,
	}
}

// NodeDeparture leaves the current node toward rel. It drives forward off
// the node marker, pivots in place for turns, and stops the tracks.
// A reversal is a half turn.
func (r *Routines) NodeDeparture(ctx context.Context, rel direction.Relative) error {
	quarters, ok := rel.Ordinal()
	if !ok {
		return fmt.Errorf("node departure: cannot depart %v", rel)
	}

	if err := r.run(ctx, r.cfg.Speed, r.cfg.Speed, r.cfg.Clear); err != nil {
		return fmt.Errorf("clear node: %w", err)
	}

	var err error
	switch quarters {
	case 1:
		err = r.run(ctx, r.cfg.Speed, -r.cfg.Speed, r.cfg.Turn)
	case 2:
		err = r.run(ctx, r.cfg.Speed, -r.cfg.Speed, 2*r.cfg.Turn)
	case 3:
		err = r.run(ctx, -r.cfg.Speed, r.cfg.Speed, r.cfg.Turn)
	}
	if err != nil {
		return fmt.Errorf("turn %v: %w", rel, err)
	}

	return r.drive.Stop(ctx)
}

// run drives the tracks at the given speeds for d, then stops them.
func (r *Routines) run(ctx context.Context, left, right float64, d time.Duration) error {
	if err := r.drive.Drive(ctx, left, right); err != nil {
		return err
	}
	if err := r.sleep(ctx, d); err != nil {
		r.drive.Stop(context.Background())
		return err
	}
	return r.drive.Stop(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
