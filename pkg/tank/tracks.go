// Package tank provides the tank's hardware: the track servos, the IR sensor
// array and the configuration file that describes them.
package tank

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// TrackName identifies a track servo.
type TrackName string

const (
	LeftTrack  TrackName = "left_track"
	RightTrack TrackName = "right_track"
)

// AllTracks returns all track names in order (matching servo IDs 1-2).
func AllTracks() []TrackName {
	return []TrackName{LeftTrack, RightTrack}
}

// Tracks drives the two track servos. The servos are continuous-rotation
// conversions: the offset of the goal position from the calibrated centre
// sets the track speed.
type Tracks struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

// NewTracks opens the servo bus on port.
func NewTracks(port string, cal Calibration) (*Tracks, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	group := feetech.NewServoGroupByIDs(bus, cal.TrackIDs()...)

	return &Tracks{
		bus:         bus,
		group:       group,
		calibration: cal,
	}, nil
}

// Close closes the bus connection.
func (t *Tracks) Close() error {
	return t.bus.Close()
}

// Enable enables torque on both tracks.
func (t *Tracks) Enable(ctx context.Context) error {
	return t.group.EnableAll(ctx)
}

// Disable disables torque so the tank can be pushed by hand.
func (t *Tracks) Disable(ctx context.Context) error {
	return t.group.DisableAll(ctx)
}

// Drive sets both track speeds, normalized to [-100, 100].
// Positive speeds move the tank forward.
func (t *Tracks) Drive(ctx context.Context, left, right float64) error {
	goals := t.calibration.Goals(map[TrackName]float64{
		LeftTrack:  left,
		RightTrack: right,
	})
	if err := t.group.SetPositions(ctx, goals); err != nil {
		return fmt.Errorf("write goals: %w", err)
	}
	return nil
}

// Stop parks both tracks at their calibrated centre.
func (t *Tracks) Stop(ctx context.Context) error {
	return t.Drive(ctx, 0, 0)
}

// Positions reads the raw present position of each track servo.
func (t *Tracks) Positions(ctx context.Context) (map[TrackName]int, error) {
	raw, err := t.group.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	return t.calibration.Named(raw), nil
}
