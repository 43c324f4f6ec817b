// Package linetank drives a line-following tank robot from node to node on a
// grid of lines.
//
// At every node the tank learns which way it is facing and which way it
// should leave, either from an operator prompt or from a route file, turns
// accordingly and follows the next line.
//
// # Installation
//
//	go install github.com/gwillem/linetank/cmd/tank@latest
//
// # Usage
//
// First, run setup to find the track servos and the IR sensor array:
//
//	tank setup
//
// Then start driving:
//
//	tank drive
//	tank drive --route route.yaml --metrics :2112
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/tank: CLI with setup, drive and relative commands
//   - pkg/direction: Compass and relative direction algebra
//   - pkg/nav: Navigation state machine and control loop
//   - pkg/linefollow: Line follower and sensor readings
//   - pkg/movement: Node departure maneuvers
//   - pkg/tank: Track servos, sensor array and configuration
//   - pkg/route: Route files as a source of node decisions
//   - pkg/telemetry: Prometheus metrics
package linetank
