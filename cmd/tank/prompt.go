package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/gwillem/linetank/pkg/direction"
)

// promptSource asks the operator for the facing and departure directions at
// every node. While a TUI is running it is suspended for the prompt.
type promptSource struct {
	program *tea.Program
}

func (s *promptSource) Orientation(ctx context.Context) (facing, departure direction.Direction, err error) {
	if s.program != nil {
		if err := s.program.ReleaseTerminal(); err != nil {
			return direction.Unknown, direction.Unknown, fmt.Errorf("release terminal: %w", err)
		}
		defer s.program.RestoreTerminal()
	}

	var facingToken, departToken string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which direction (N,E,S,W) am I facing?").
				Value(&facingToken),
			huh.NewInput().
				Title("In which direction (N,E,S,W) should I depart?").
				Value(&departToken),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return direction.Unknown, direction.Unknown, fmt.Errorf("prompt: %w", err)
	}

	return direction.ParseOrUnknown(facingToken), direction.ParseOrUnknown(departToken), nil
}
