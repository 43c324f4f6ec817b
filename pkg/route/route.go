// Package route supplies node decisions from a prepared route file instead
// of an operator.
//
// A route file lists one step per node, in the order the nodes are reached:
//
//	steps:
//	  - facing: N
//	    depart: E
//	  - facing: east
//	    depart: south
package route

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/linetank/pkg/direction"
)

// ErrExhausted is returned once every step has been used.
var ErrExhausted = errors.New("route exhausted")

// Step is the decision for one node.
type Step struct {
	Facing string `yaml:"facing"`
	Depart string `yaml:"depart"`
}

type file struct {
	Steps []Step `yaml:"steps"`
}

// Source hands out route steps in order.
type Source struct {
	mu    sync.Mutex
	steps []Step
	next  int
}

// Load reads a route file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a route document.
func Parse(data []byte) (*Source, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse route: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, errors.New("parse route: no steps")
	}
	return NewSource(f.Steps...), nil
}

// NewSource creates a source from steps.
func NewSource(steps ...Step) *Source {
	return &Source{steps: steps}
}

// Orientation returns the next step's directions. Tokens that do not parse
// come back as direction.Unknown.
func (s *Source) Orientation(ctx context.Context) (facing, departure direction.Direction, err error) {
	if err := ctx.Err(); err != nil {
		return direction.Unknown, direction.Unknown, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.steps) {
		return direction.Unknown, direction.Unknown, ErrExhausted
	}
	step := s.steps[s.next]
	s.next++

	return direction.ParseOrUnknown(step.Facing), direction.ParseOrUnknown(step.Depart), nil
}

// Remaining returns the number of unused steps.
func (s *Source) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps) - s.next
}
