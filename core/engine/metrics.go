package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	phaseDuration *prometheus.HistogramVec
	placements    *prometheus.CounterVec
	violationRank *prometheus.GaugeVec
	swapAttempts  prometheus.Counter
	swapAccepted  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_phase_duration_seconds",
			Help:    "Wall time spent in each generation phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	placed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_placements_total",
			Help: "Number of cells placed by each generation phase",
		},
		[]string{"phase"},
	)
	viol := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "generation_violations",
			Help: "Violations in the most recently generated timetable",
		},
		[]string{"priority"},
	)
	att := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_swap_attempts_total",
			Help: "Number of swap moves tried by the optimizer",
		},
	)
	acc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_swaps_accepted_total",
			Help: "Number of swap moves the optimizer kept",
		},
	)
	return dur, placed, viol, att, acc
}

func init() {
	phaseDuration, placements, violationRank, swapAttempts, swapAccepted = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(phaseDuration, placements, violationRank, swapAttempts, swapAccepted)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	phaseDuration, placements, violationRank, swapAttempts, swapAccepted = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
