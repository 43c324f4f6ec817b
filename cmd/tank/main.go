package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Setup    SetupCommand    `command:"setup" description:"Find the track servos and sensor array, calibrate and save tank.json"`
	Drive    DriveCommand    `command:"drive" description:"Follow lines from node to node"`
	Relative RelativeCommand `command:"relative" alias:"rel" description:"Print a target direction relative to a heading"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "LineTank - line following tank robot CLI"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
