package tank

import (
	"github.com/hipsterbrown/feetech-servo/feetech"
)

// TrackCalibration holds calibration data for a single track servo.
// RangeMin and RangeMax are the goal positions for full reverse and full
// forward; their midpoint stops the track.
type TrackCalibration struct {
	ID        int `json:"id"`
	DriveMode int `json:"drive_mode"` // 1 inverts the track
	RangeMin  int `json:"range_min"`
	RangeMax  int `json:"range_max"`
}

// Calibration holds calibration data for both tracks, keyed by track name.
type Calibration map[TrackName]TrackCalibration

// DefaultSpan is the goal offset from centre that gives full speed.
const DefaultSpan = 512

// CenteredCalibration builds a calibration with the range centred on center.
func CenteredCalibration(id, center, span int, inverted bool) TrackCalibration {
	mode := 0
	if inverted {
		mode = 1
	}
	return TrackCalibration{
		ID:        id,
		DriveMode: mode,
		RangeMin:  center - span,
		RangeMax:  center + span,
	}
}

// Center returns the goal position that stops the track.
func (c TrackCalibration) Center() int {
	return c.RangeMin + (c.RangeMax-c.RangeMin)/2
}

// Normalize converts a raw goal position to a speed in the range [-100, 100].
func (c TrackCalibration) Normalize(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return 0
	}
	norm := (float64(raw-c.RangeMin)/rangeSize)*200 - 100
	if c.DriveMode == 1 {
		norm = -norm
	}
	return norm
}

// Denormalize converts a speed in [-100, 100] to a raw goal position.
// Speeds outside the range are clamped.
func (c TrackCalibration) Denormalize(norm float64) int {
	if norm > 100 {
		norm = 100
	} else if norm < -100 {
		norm = -100
	}
	if c.DriveMode == 1 {
		norm = -norm
	}
	rangeSize := float64(c.RangeMax - c.RangeMin)
	return int((norm+100)/200*rangeSize) + c.RangeMin
}

// TrackIDs returns the servo IDs for all tracks in the calibration.
func (c Calibration) TrackIDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range AllTracks() {
		if tc, ok := c[name]; ok {
			ids = append(ids, tc.ID)
		}
	}
	return ids
}

// ByID returns track name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (TrackName, TrackCalibration, bool) {
	for name, tc := range c {
		if tc.ID == id {
			return name, tc, true
		}
	}
	return "", TrackCalibration{}, false
}

// Goals converts track speeds to raw goal positions keyed by servo ID.
// Tracks missing from the calibration are skipped.
func (c Calibration) Goals(speeds map[TrackName]float64) feetech.PositionMap {
	goals := make(feetech.PositionMap, len(speeds))
	for name, speed := range speeds {
		tc, ok := c[name]
		if !ok {
			continue
		}
		goals[tc.ID] = tc.Denormalize(speed)
	}
	return goals
}

// Named converts raw positions keyed by servo ID to positions keyed by track
// name. Unknown IDs are skipped.
func (c Calibration) Named(raw map[int]int) map[TrackName]int {
	positions := make(map[TrackName]int, len(raw))
	for id, pos := range raw {
		name, _, ok := c.ByID(id)
		if !ok {
			continue
		}
		positions[name] = pos
	}
	return positions
}

// Speeds converts track positions to the speeds they command.
func (c Calibration) Speeds(positions map[TrackName]int) map[TrackName]float64 {
	speeds := make(map[TrackName]float64, len(positions))
	for name, pos := range positions {
		tc, ok := c[name]
		if !ok {
			continue
		}
		speeds[name] = tc.Normalize(pos)
	}
	return speeds
}
