package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the divination collectors.
type Metrics struct {
	linesCast       *prometheus.CounterVec
	resolved        *prometheus.CounterVec
	interpretations *prometheus.CounterVec
	interpretTime   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		linesCast: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zhouyi_lines_cast_total",
				Help: "Lines cast, by coin total",
			},
			[]string{"total"},
		),
		resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zhouyi_hexagrams_resolved_total",
				Help: "Completed casts, by hexagram number",
			},
			[]string{"number"},
		),
		interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zhouyi_interpretations_total",
				Help: "Interpretation requests, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		interpretTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zhouyi_interpretation_duration_seconds",
				Help:    "Interpretation provider latency",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			},
			[]string{"provider"},
		),
	}
	reg.MustRegister(m.linesCast, m.resolved, m.interpretations, m.interpretTime)
	return m
}

// LineCast records one cast line.
func (m *Metrics) LineCast(total int) {
	if m == nil {
		return
	}
	m.linesCast.WithLabelValues(strconv.Itoa(total)).Inc()
}

// Resolved records a completed hexagram.
func (m *Metrics) Resolved(number int) {
	if m == nil {
		return
	}
	m.resolved.WithLabelValues(strconv.Itoa(number)).Inc()
}

// Interpretation records one provider call.
func (m *Metrics) Interpretation(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.interpretations.WithLabelValues(provider, outcome).Inc()
	m.interpretTime.WithLabelValues(provider).Observe(d.Seconds())
}
