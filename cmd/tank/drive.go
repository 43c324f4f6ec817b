package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/linetank/pkg/linefollow"
	"github.com/gwillem/linetank/pkg/movement"
	"github.com/gwillem/linetank/pkg/nav"
	"github.com/gwillem/linetank/pkg/route"
	"github.com/gwillem/linetank/pkg/tank"
	"github.com/gwillem/linetank/pkg/telemetry"
)

type DriveCommand struct {
	Route    string  `long:"route" description:"YAML route file to use instead of prompting at each node"`
	Hz       int     `long:"hz" description:"Line following loop frequency (overrides tank.json)"`
	Speed    float64 `long:"speed" description:"Base track speed 0-100 (overrides tank.json)"`
	Metrics  string  `long:"metrics" description:"Serve Prometheus metrics on this address, e.g. :2112"`
	Headless bool    `long:"headless" description:"Log to stderr instead of showing the dashboard"`
	LogFile  string  `long:"log-file" default:"tank.log" description:"Status log file while the dashboard is shown"`
	Verbose  bool    `long:"verbose" short:"v" description:"Debug logging"`
}

const (
	headerHeight = 2 // title + blank line
	statusHeight = 3 // status panel
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Chart data sets and their colors
var seriesColors = []struct {
	name  string
	color string
}{
	{"offset", "226"}, // yellow
	{"left", "46"},    // green
	{"right", "51"},   // cyan
}

var stateColors = map[nav.State]string{
	nav.StateInitializing:  "241",
	nav.StateLineFollowing: "10",
	nav.StateAtNode:        "12",
	nav.StateReadyToDepart: "14",
	nav.StateError:         "9",
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type driveModel struct {
	nav      *nav.Navigator
	samples  <-chan linefollow.Sample
	hz       int
	chart    *streamlinechart.Model
	status   nav.Status
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	quitting bool
}

func (m *driveModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the navigator and line follower
type stateMsg nav.Status
type logMsg string
type sampleMsg linefollow.Sample

func waitForState(n *nav.Navigator) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-n.States())
	}
}

func waitForLog(n *nav.Navigator) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-n.Logs())
	}
}

func waitForSample(samples <-chan linefollow.Sample) tea.Cmd {
	return func() tea.Msg {
		return sampleMsg(<-samples)
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *driveModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - statusHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *driveModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialDriveModel(n *nav.Navigator, samples <-chan linefollow.Sample, hz int) driveModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-100, 100),
	)

	for _, s := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.color))
		chart.SetDataSetStyles(s.name, runes.ThinLineStyle, style)
	}

	return driveModel{
		nav:     n,
		samples: samples,
		hz:      hz,
		chart:   &chart,
		status:  n.Status(),
	}
}

func (m driveModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.nav),
		waitForLog(m.nav),
		waitForSample(m.samples),
	)
}

func (m driveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		m.status = nav.Status(msg)
		return m, waitForState(m.nav)

	case sampleMsg:
		s := linefollow.Sample(msg)
		m.chart.PushDataSet("offset", s.Offset*100)
		m.chart.PushDataSet("left", s.Left)
		m.chart.PushDataSet("right", s.Right)
		m.chart.DrawAll()
		return m, waitForSample(m.samples)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.nav)
	}

	return m, nil
}

func (m driveModel) View() string {
	if m.quitting {
		return "Driving stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("LineTank Drive"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.hz))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Status
	sb.WriteString(renderStatus(m.status))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("250"))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderStatus(st nav.Status) string {
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(stateColors[st.State]))

	fields := []string{
		labelStyle.Render("state ") + stateStyle.Render(st.State.String()),
		labelStyle.Render("facing ") + st.Facing.String(),
		labelStyle.Render("next ") + st.NextDeparture.String(),
		labelStyle.Render("nodes ") + fmt.Sprintf("%d", st.Nodes),
	}
	if st.Fault != nav.FaultNone {
		fields = append(fields, stateStyle.Render("fault: "+st.Fault.String()))
	}
	return strings.Join(fields, "   ")
}

func renderLegend() string {
	var items []string
	for _, s := range seriesColors {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(s.color)).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+s.name)
	}
	return strings.Join(items, "  ")
}

func (c *DriveCommand) Execute(args []string) error {
	cfg, err := tank.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'tank setup' first.")
		os.Exit(1)
	}

	if cfg.Tracks.Port == "" || cfg.Sensor.Port == "" {
		fmt.Fprintln(os.Stderr, "Ports not configured. Run 'tank setup' first.")
		os.Exit(1)
	}
	if !cfg.Tracks.IsCalibrated() {
		fmt.Fprintln(os.Stderr, "Tracks not calibrated. Run 'tank setup' first.")
		os.Exit(1)
	}

	if c.Hz > 0 {
		cfg.Follow.Hz = c.Hz
	}
	if c.Speed > 0 {
		cfg.Follow.Speed = c.Speed
	}

	fmt.Printf("Loaded configuration from %s\n", tank.DefaultConfigFile)

	logger, closeLog, err := c.logger()
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer closeLog()

	// Hardware
	tracks, err := tank.NewTracks(cfg.Tracks.Port, cfg.Tracks.Calibration)
	if err != nil {
		log.Fatalf("Failed to open tracks: %v", err)
	}
	defer tracks.Close()

	sensor, err := tank.OpenSensor(cfg.Sensor.Port, cfg.Sensor.BaudRate)
	if err != nil {
		log.Fatalf("Failed to open sensor: %v", err)
	}
	defer sensor.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := tracks.Enable(ctx); err != nil {
		log.Fatalf("Failed to enable tracks: %v", err)
	}
	defer tracks.Disable(context.Background())

	follower := linefollow.NewFollower(sensor, tracks, cfg.FollowerConfig())
	routines := movement.NewRoutines(tracks, cfg.MovementConfig())

	// Metrics
	reg := prometheus.NewRegistry()
	metrics := telemetry.New(reg)
	if c.Metrics != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("serving metrics", "addr", c.Metrics)
			if err := http.ListenAndServe(c.Metrics, mux); err != nil {
				logger.Error("metrics server", "error", err)
			}
		}()
	}

	samples := make(chan linefollow.Sample, 16)
	follower.OnSample(func(s linefollow.Sample) {
		metrics.ObserveSample(s)
		if c.Headless {
			return
		}
		select {
		case samples <- s:
		default:
			// Drop if the dashboard falls behind
		}
	})

	// Node decisions
	var source nav.OrientationSource
	prompt := &promptSource{}
	if c.Route != "" {
		r, err := route.Load(c.Route)
		if err != nil {
			log.Fatalf("Failed to load route: %v", err)
		}
		logger.Info("loaded route", "file", c.Route, "steps", r.Remaining())
		source = r
	} else {
		source = prompt
	}

	navigator, err := nav.New(nav.Config{
		Follower:     follower,
		Mover:        routines,
		Orientation:  source,
		Logger:       logger,
		Observer:     metrics,
		IdleInterval: cfg.IdleInterval(),
	})
	if err != nil {
		log.Fatalf("Failed to create navigator: %v", err)
	}

	if c.Headless {
		if err := navigator.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	}

	p := tea.NewProgram(initialDriveModel(navigator, samples, cfg.Follow.Hz), tea.WithAltScreen())
	prompt.program = p

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := navigator.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("navigator stopped", "error", err)
		}
	}()

	_, err = p.Run()

	// Stop the navigator before the hardware is released
	cancel()
	<-done

	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

// logger returns the status logger: stderr when headless, otherwise a file so
// the dashboard is not overwritten.
func (c *DriveCommand) logger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if c.Headless {
		return nav.NewLogger(level), func() {}, nil
	}
	if c.LogFile == "" {
		return nav.NewLoggerTo(io.Discard, level), func() {}, nil
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return nav.NewLoggerTo(f, level), func() { f.Close() }, nil
}
