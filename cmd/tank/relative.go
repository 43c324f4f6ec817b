package main

import (
	"fmt"

	"github.com/gwillem/linetank/pkg/direction"
)

type RelativeCommand struct {
	Args struct {
		Facing string `positional-arg-name:"FACING" description:"Heading, e.g. N or north"`
		Target string `positional-arg-name:"TARGET" description:"Compass direction to reach"`
	} `positional-args:"yes" required:"yes"`
}

func (c *RelativeCommand) Execute(args []string) error {
	facing, ok := direction.Parse(c.Args.Facing)
	if !ok {
		return fmt.Errorf("unknown direction %q", c.Args.Facing)
	}
	target, ok := direction.Parse(c.Args.Target)
	if !ok {
		return fmt.Errorf("unknown direction %q", c.Args.Target)
	}

	rel := direction.RelativeTo(facing, target)
	if rel == direction.RelativeUnknown {
		return fmt.Errorf("cannot turn from %v to %v", facing, target)
	}
	fmt.Println(rel)
	return nil
}
