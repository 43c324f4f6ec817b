// Package telemetry exposes navigation and line following metrics for Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gwillem/linetank/pkg/linefollow"
	"github.com/gwillem/linetank/pkg/nav"
)

// Metrics records navigator events and line follower samples. It implements
// nav.Observer.
type Metrics struct {
	transitions *prometheus.CounterVec
	nodes       prometheus.Counter
	faults      *prometheus.CounterVec
	state       *prometheus.GaugeVec
	offset      prometheus.Histogram
	lineLost    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linetank_state_transitions_total",
				Help: "Navigator state transitions by target state",
			},
			[]string{"state"},
		),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linetank_nodes_reached_total",
			Help: "Nodes reached",
		}),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linetank_faults_total",
				Help: "Faults that put the navigator in the error state",
			},
			[]string{"fault"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "linetank_state",
				Help: "1 for the navigator's current state, 0 otherwise",
			},
			[]string{"state"},
		),
		offset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linetank_line_offset",
			Help:    "Line position under the sensor array, -1 (left) to 1 (right)",
			Buckets: prometheus.LinearBuckets(-1, 0.25, 9),
		}),
		lineLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linetank_line_lost_samples_total",
			Help: "Control steps with no sensor on the line",
		}),
	}
	reg.MustRegister(m.transitions, m.nodes, m.faults, m.state, m.offset, m.lineLost)
	return m
}

// Transition implements nav.Observer.
func (m *Metrics) Transition(from, to nav.State) {
	m.transitions.WithLabelValues(to.String()).Inc()
	m.state.WithLabelValues(from.String()).Set(0)
	m.state.WithLabelValues(to.String()).Set(1)
}

// NodeArrived implements nav.Observer.
func (m *Metrics) NodeArrived() {
	m.nodes.Inc()
}

// Faulted implements nav.Observer.
func (m *Metrics) Faulted(f nav.Fault) {
	m.faults.WithLabelValues(f.String()).Inc()
}

// ObserveSample records one line follower control step.
func (m *Metrics) ObserveSample(s linefollow.Sample) {
	if !s.OnLine {
		m.lineLost.Inc()
		return
	}
	m.offset.Observe(s.Offset)
}
