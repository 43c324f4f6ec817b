package main

import (
	"context"
	"strings"
	"testing"

	"github.com/gwillem/linetank/pkg/direction"
	"github.com/gwillem/linetank/pkg/linefollow"
	"github.com/gwillem/linetank/pkg/nav"
)

type nopFollower struct{}

func (nopFollower) FollowToNextNode(ctx context.Context) (linefollow.Result, error) {
	return linefollow.TimedOut, nil
}
func (nopFollower) ChangeStrategy(s linefollow.Strategy) {}

type nopMover struct{}

func (nopMover) NodeDeparture(ctx context.Context, rel direction.Relative) error { return nil }

type nopSource struct{}

func (nopSource) Orientation(ctx context.Context) (direction.Direction, direction.Direction, error) {
	return direction.Unknown, direction.Unknown, nil
}

func TestRelativeCommand(t *testing.T) {
	tests := []struct {
		facing, target string
		wantErr        bool
	}{
		{"N", "E", false},
		{"south", "north", false},
		{"N", "garbage", true},
		{"x", "E", true},
		{"U", "E", true},
	}

	for _, tt := range tests {
		c := &RelativeCommand{}
		c.Args.Facing = tt.facing
		c.Args.Target = tt.target
		err := c.Execute(nil)
		if (err != nil) != tt.wantErr {
			t.Errorf("relative %s %s: err = %v, wantErr %v", tt.facing, tt.target, err, tt.wantErr)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	st := nav.Status{
		State:         nav.StateReadyToDepart,
		Facing:        direction.North,
		NextDeparture: direction.East,
		Nodes:         3,
	}
	out := renderStatus(st)
	for _, want := range []string{"READY_TO_DEPART", "NORTH", "EAST", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderStatus() = %q, missing %q", out, want)
		}
	}
	if strings.Contains(out, "fault") {
		t.Errorf("renderStatus() shows a fault without one: %q", out)
	}

	st.State = nav.StateError
	st.Fault = nav.FaultTimeout
	if out := renderStatus(st); !strings.Contains(out, "fault: timeout") {
		t.Errorf("renderStatus() = %q, missing fault", out)
	}
}

func TestDriveModel_AddLog(t *testing.T) {
	m := &driveModel{}
	for i := 0; i < maxLogs+3; i++ {
		m.addLog(strings.Repeat("x", i))
	}
	if len(m.logs) != maxLogs {
		t.Fatalf("logs = %d, want %d", len(m.logs), maxLogs)
	}
	if m.logs[maxLogs-1] != strings.Repeat("x", maxLogs+2) {
		t.Errorf("last log = %q", m.logs[maxLogs-1])
	}
}

func TestDriveModel_StateUpdate(t *testing.T) {
	n, err := nav.New(nav.Config{
		Follower:    nopFollower{},
		Mover:       nopMover{},
		Orientation: nopSource{},
	})
	if err != nil {
		t.Fatal(err)
	}
	samples := make(chan linefollow.Sample)
	m := initialDriveModel(n, samples, 50)

	updated, cmd := m.Update(stateMsg(nav.Status{State: nav.StateLineFollowing}))
	if cmd == nil {
		t.Error("state update should keep listening")
	}
	if got := updated.(driveModel).status.State; got != nav.StateLineFollowing {
		t.Errorf("status = %v, want LINE_FOLLOWING", got)
	}
}
