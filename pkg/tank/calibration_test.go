package tank

import (
	"math"
	"testing"
)

func TestTrackCalibration_Normalize(t *testing.T) {
	cal := TrackCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		raw      int
		expected float64
	}{
		{1000, -100.0}, // min -> full reverse
		{3000, 100.0},  // max -> full forward
		{2000, 0.0},    // mid -> stopped
		{1500, -50.0},
		{2500, 50.0},
	}

	for _, tt := range tests {
		got := cal.Normalize(tt.raw)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("Normalize(%d) = %f, want %f", tt.raw, got, tt.expected)
		}
	}
}

func TestTrackCalibration_Denormalize(t *testing.T) {
	cal := TrackCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		norm     float64
		expected int
	}{
		{-100.0, 1000},
		{100.0, 3000},
		{0.0, 2000},
		{-50.0, 1500},
		{50.0, 2500},
		{250.0, 3000},  // clamped
		{-250.0, 1000}, // clamped
	}

	for _, tt := range tests {
		got := cal.Denormalize(tt.norm)
		if got != tt.expected {
			t.Errorf("Denormalize(%f) = %d, want %d", tt.norm, got, tt.expected)
		}
	}
}

func TestTrackCalibration_Inverted(t *testing.T) {
	cal := CenteredCalibration(2, 2048, 512, true)

	if got := cal.Center(); got != 2048 {
		t.Errorf("Center() = %d, want 2048", got)
	}
	if got := cal.Denormalize(100); got != 1536 {
		t.Errorf("Denormalize(100) = %d, want 1536", got)
	}
	if got := cal.Normalize(1536); math.Abs(got-100) > 0.001 {
		t.Errorf("Normalize(1536) = %f, want 100", got)
	}
}

func TestTrackCalibration_RoundTrip(t *testing.T) {
	cal := CenteredCalibration(1, 2000, 400, false)

	for norm := -100.0; norm <= 100; norm += 10 {
		raw := cal.Denormalize(norm)
		back := cal.Normalize(raw)
		if math.Abs(back-norm) > 0.5 {
			t.Errorf("Round-trip failed: %f -> %d -> %f", norm, raw, back)
		}
	}
}

func TestCalibration_TrackIDs(t *testing.T) {
	cal := Calibration{
		RightTrack: TrackCalibration{ID: 2},
		LeftTrack:  TrackCalibration{ID: 1},
	}

	ids := cal.TrackIDs()
	expected := []int{1, 2}

	if len(ids) != len(expected) {
		t.Fatalf("TrackIDs returned %d IDs, want %d", len(ids), len(expected))
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("TrackIDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestCalibration_ByID(t *testing.T) {
	cal := Calibration{
		LeftTrack:  TrackCalibration{ID: 1, RangeMin: 100, RangeMax: 200},
		RightTrack: TrackCalibration{ID: 2, RangeMin: 300, RangeMax: 400},
	}

	name, tc, ok := cal.ByID(2)
	if !ok {
		t.Fatal("ByID(2) returned false")
	}
	if name != RightTrack {
		t.Errorf("ByID(2) returned name %s, want right_track", name)
	}
	if tc.RangeMin != 300 {
		t.Errorf("ByID(2) returned wrong calibration: %+v", tc)
	}

	if _, _, ok = cal.ByID(99); ok {
		t.Error("ByID(99) should return false")
	}
}

func TestCalibration_Goals(t *testing.T) {
	cal := Calibration{
		LeftTrack:  CenteredCalibration(1, 2048, 512, false),
		RightTrack: CenteredCalibration(2, 2048, 512, true),
	}

	goals := cal.Goals(map[TrackName]float64{
		LeftTrack:  100,
		RightTrack: 100,
		"turret":   50,
	})

	if len(goals) != 2 {
		t.Fatalf("Goals returned %d entries, want 2", len(goals))
	}
	if goals[1] != 2560 {
		t.Errorf("left goal = %d, want 2560", goals[1])
	}
	if goals[2] != 1536 {
		t.Errorf("right goal = %d, want 1536", goals[2])
	}
}

func TestCalibration_Named(t *testing.T) {
	cal := Calibration{
		LeftTrack:  TrackCalibration{ID: 2},
		RightTrack: TrackCalibration{ID: 1},
	}

	positions := cal.Named(map[int]int{1: 1900, 2: 2100, 7: 42})

	if len(positions) != 2 {
		t.Fatalf("Named returned %d entries, want 2", len(positions))
	}
	if positions[LeftTrack] != 2100 {
		t.Errorf("left position = %d, want 2100", positions[LeftTrack])
	}
	if positions[RightTrack] != 1900 {
		t.Errorf("right position = %d, want 1900", positions[RightTrack])
	}
}

func TestCalibration_Speeds(t *testing.T) {
	cal := Calibration{
		LeftTrack:  CenteredCalibration(1, 2000, 500, false),
		RightTrack: CenteredCalibration(2, 2000, 500, true),
	}

	tests := []struct {
		name     TrackName
		pos      int
		expected float64
	}{
		{LeftTrack, 2000, 0},    // resting at centre
		{LeftTrack, 2050, 10},   // creeping forward
		{RightTrack, 2050, -10}, // mirrored servo creeps backward
	}

	for _, tt := range tests {
		speeds := cal.Speeds(map[TrackName]int{tt.name: tt.pos, "turret": 0})
		if len(speeds) != 1 {
			t.Fatalf("Speeds returned %d entries, want 1", len(speeds))
		}
		if got := speeds[tt.name]; math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("Speeds(%s=%d) = %f, want %f", tt.name, tt.pos, got, tt.expected)
		}
	}
}
