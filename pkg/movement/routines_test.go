package movement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gwillem/linetank/pkg/direction"
)

type step struct {
	left, right float64
	d           time.Duration
}

type recorder struct {
	steps   []step
	current *step
	stops   int
}

func (r *recorder) Drive(ctx context.Context, left, right float64) error {
	r.current = &step{left: left, right: right}
	return nil
}

func (r *recorder) Stop(ctx context.Context) error {
	r.stops++
	return nil
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	if r.current != nil {
		r.current.d = d
		r.steps = append(r.steps, *r.current)
		r.current = nil
	}
	return ctx.Err()
}

func newTestRoutines() (*Routines, *recorder) {
	rec := &recorder{}
	r := NewRoutines(rec, Config{Speed: 50, Clear: 100 * time.Millisecond, Turn: 400 * time.Millisecond})
	r.sleep = rec.sleep
	return r, rec
}

func TestNodeDeparture(t *testing.T) {
	clearNode := step{50, 50, 100 * time.Millisecond}

	tests := []struct {
		rel  direction.Relative
		want []step
	}{
		{direction.Ahead, []step{clearNode}},
		{direction.Right, []step{clearNode, {50, -50, 400 * time.Millisecond}}},
		{direction.Left, []step{clearNode, {-50, 50, 400 * time.Millisecond}}},
		{direction.Behind, []step{clearNode, {50, -50, 800 * time.Millisecond}}},
	}

	for _, tt := range tests {
		r, rec := newTestRoutines()
		if err := r.NodeDeparture(context.Background(), tt.rel); err != nil {
			t.Fatalf("NodeDeparture(%v): %v", tt.rel, err)
		}
		if len(rec.steps) != len(tt.want) {
			t.Fatalf("NodeDeparture(%v) steps = %+v, want %+v", tt.rel, rec.steps, tt.want)
		}
		for i := range tt.want {
			if rec.steps[i] != tt.want[i] {
				t.Errorf("NodeDeparture(%v) step %d = %+v, want %+v", tt.rel, i, rec.steps[i], tt.want[i])
			}
		}
		if rec.stops == 0 {
			t.Errorf("NodeDeparture(%v) never stopped the tracks", tt.rel)
		}
	}
}

func TestNodeDeparture_Unknown(t *testing.T) {
	r, rec := newTestRoutines()
	if err := r.NodeDeparture(context.Background(), direction.RelativeUnknown); err == nil {
		t.Fatal("NodeDeparture(UNKNOWN) should fail")
	}
	if len(rec.steps) != 0 {
		t.Errorf("tracks moved for UNKNOWN departure: %+v", rec.steps)
	}
}

func TestNodeDeparture_Cancelled(t *testing.T) {
	r, rec := newTestRoutines()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.NodeDeparture(ctx, direction.Right)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if rec.stops == 0 {
		t.Error("tracks not stopped after cancellation")
	}
}
