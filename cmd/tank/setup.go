package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/linetank/pkg/linefollow"
	"github.com/gwillem/linetank/pkg/tank"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	Span     int `long:"span" default:"512" description:"Goal offset from centre that gives full track speed"`
	BaudRate int `long:"sensor-baud" default:"115200" description:"Sensor array baud rate"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("LineTank Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━"))
	fmt.Println()

	// Keep tuning from an earlier setup
	config := &tank.Config{}
	if tank.ConfigExists() {
		if cfg, err := tank.LoadConfig(); err == nil {
			config = cfg
		}
	}

	// Step 1: Find the track servo bus
	busPort, servos := scanForTracks()
	config.Tracks.Port = busPort

	// Step 2: Identify and calibrate the tracks
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Calibrating Tracks ━━━"))
	fmt.Println()
	config.Tracks.Calibration = calibrateTracks(busPort, servos, c.Span)

	if err := config.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	// Step 3: Sensor array
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Sensor Array ━━━"))
	fmt.Println()
	config.Sensor.Port = selectSensorPort(busPort)
	config.Sensor.BaudRate = c.BaudRate
	checkSensor(config.Sensor)

	config.WithDefaults()
	if err := config.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", tank.DefaultConfigFile)
	fmt.Println()
	fmt.Println("Start driving with: " + headerStyle.Render("tank drive"))

	return nil
}

func scanForTracks() (string, []feetech.FoundServo) {
	fmt.Println("Scanning for the track servo bus...")
	fmt.Println()

	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, servos, err := connectToTracks(port)
		if err != nil {
			continue
		}
		bus.Close()

		fmt.Printf("  Found track servos on %s\n", port)
		return port, servos
	}

	fmt.Println("No track servos found.")
	fmt.Println("Make sure the tank is connected and powered on.")
	os.Exit(1)
	return "", nil
}

func isTrackBus(servos []feetech.FoundServo) bool {
	if len(servos) != 2 {
		return false
	}

	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}
	return ids[1] && ids[2]
}

func connectToTracks(port string) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, 1, 2)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	if !isTrackBus(servos) {
		bus.Close()
		return nil, nil, fmt.Errorf("not a track bus (expected 2 servos with IDs 1-2)")
	}

	return bus, servos, nil
}

func calibrateTracks(port string, found []feetech.FoundServo, span int) tank.Calibration {
	ctx := context.Background()

	waitForUser("Put the tank on a stand so the tracks can turn freely.")

	// Servo 1 wiggles; the operator tells us which track it drives
	leftID := 1
	if identifyTrack(ctx, port, found) == tank.RightTrack {
		leftID = 2
	}
	rightID := 3 - leftID

	tracks, err := tank.NewTracks(port, tank.Calibration{
		tank.LeftTrack:  {ID: leftID},
		tank.RightTrack: {ID: rightID},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to tracks: %v\n", err)
		os.Exit(1)
	}
	defer tracks.Close()

	// With torque off each servo rests at the position that stops its track
	if err := tracks.Disable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error disabling tracks: %v\n", err)
		os.Exit(1)
	}
	time.Sleep(200 * time.Millisecond)

	centers, err := tracks.Positions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading tracks: %v\n", err)
		os.Exit(1)
	}
	if len(centers) != 2 {
		fmt.Fprintf(os.Stderr, "Expected 2 track positions, got %d\n", len(centers))
		os.Exit(1)
	}

	mirrored := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Is the right track servo mounted mirrored?").
				Description("Mirrored servos turn the opposite way for forward motion").
				Value(&mirrored),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	cal := tank.Calibration{
		tank.LeftTrack:  tank.CenteredCalibration(leftID, centers[tank.LeftTrack], span, false),
		tank.RightTrack: tank.CenteredCalibration(rightID, centers[tank.RightTrack], span, mirrored),
	}

	// A servo that settles away from its centre makes the track creep
	rest, err := tracks.Positions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading tracks: %v\n", err)
		os.Exit(1)
	}
	drift := cal.Speeds(rest)

	rows := [][]string{}
	for _, name := range tank.AllTracks() {
		tc := cal[name]
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", tc.ID),
			fmt.Sprintf("%d", tc.Center()),
			fmt.Sprintf("%d", tc.RangeMin),
			fmt.Sprintf("%d", tc.RangeMax),
			fmt.Sprintf("%v", tc.DriveMode == 1),
			fmt.Sprintf("%.1f", drift[name]),
		})
	}
	fmt.Println(table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Track", "ID", "Centre", "Min", "Max", "Inverted", "Drift %").
		Rows(rows...).
		Render())

	fmt.Println()
	fmt.Println("Tracks calibrated.")
	return cal
}

// identifyTrack wiggles servo 1 and asks which track moved.
func identifyTrack(ctx context.Context, port string, found []feetech.FoundServo) tank.TrackName {
	bus, _, err := connectToTracks(port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to tracks: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	for _, s := range found {
		if s.ID == 1 {
			return identifyTrackWithWiggle(ctx, feetech.NewServo(bus, s.ID, s.Model))
		}
	}
	fmt.Fprintln(os.Stderr, "Servo 1 not found on the track bus")
	os.Exit(1)
	return ""
}

func identifyTrackWithWiggle(ctx context.Context, servo *feetech.Servo) tank.TrackName {
	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Error reading position: %v\n", err)
		os.Exit(1)
	}

	if err := servo.Enable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  Error enabling servo: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n  Wiggling one track...")

	wiggleAmount := 60
	moveTimeMs := 400
	servo.SetPositionWithTime(ctx, originalPos+wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	servo.SetPositionWithTime(ctx, originalPos-wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	servo.SetPositionWithTime(ctx, originalPos, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	servo.Disable(ctx)

	var track tank.TrackName
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[tank.TrackName]().
				Title("Which track moved?").
				Description("Seen from behind the tank").
				Options(
					huh.NewOption("Left track", tank.LeftTrack),
					huh.NewOption("Right track", tank.RightTrack),
				).
				Value(&track),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return track
}

func selectSensorPort(busPort string) string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	var options []huh.Option[string]
	for _, port := range ports {
		if port == busPort || strings.Contains(port, "Bluetooth") {
			continue
		}
		options = append(options, huh.NewOption(port, port))
	}
	if len(options) == 0 {
		fmt.Println("No serial port left for the sensor array.")
		fmt.Println("Connect the sensor board and run this command again.")
		os.Exit(1)
	}

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the IR sensor array on?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

func checkSensor(cfg tank.SensorConfig) {
	sensor, err := tank.OpenSensor(cfg.Port, cfg.BaudRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sensor: %v\n", err)
		os.Exit(1)
	}
	defer sensor.Close()

	fmt.Println("Move the tank across a line and a node marker.")
	fmt.Println()

	p := tea.NewProgram(sensorModel{sensor: sensor})
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running sensor check: %v\n", err)
		os.Exit(1)
	}
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}

// Sensor check TUI model
type sensorModel struct {
	sensor   linefollow.Sensor
	reading  linefollow.Reading
	err      error
	seenLine bool
	seenNode bool
	quitting bool
}

type tickMsg time.Time

func sensorTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m sensorModel) Init() tea.Cmd {
	return sensorTick()
}

func (m sensorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.reading, m.err = m.sensor.Read(context.Background())
		if m.err == nil {
			if _, ok := m.reading.Offset(); ok {
				m.seenLine = true
			}
			if m.reading.AtNode() {
				m.seenNode = true
			}
		}
		return m, sensorTick()
	}

	return m, nil
}

func (m sensorModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	onStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	offStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	if m.err != nil {
		sb.WriteString(badStyle.Render(fmt.Sprintf("Read error: %v", m.err)))
		sb.WriteString("\n\n")
	}

	headers := make([]string, len(m.reading))
	cells := make([]string, len(m.reading))
	for i, on := range m.reading {
		headers[i] = fmt.Sprintf("%d", i+1)
		if on {
			cells[i] = "██"
		} else {
			cells[i] = "░░"
		}
	}

	if len(m.reading) > 0 {
		reading := m.reading
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers(headers...).
			Rows(cells).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headStyle
				}
				if col < len(reading) && reading[col] {
					return onStyle
				}
				return offStyle
			})
		sb.WriteString(t.Render())
		sb.WriteString("\n\n")
	}

	check := func(ok bool, label string) string {
		if ok {
			return successStyle.Render("✓ " + label)
		}
		return dimStyle.Render("· " + label)
	}
	sb.WriteString(check(m.seenLine, "line seen"))
	sb.WriteString("   ")
	sb.WriteString(check(m.seenNode, "node marker seen"))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))

	return sb.String()
}
