package metrics

import (
	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records generation outcomes in Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	score      prometheus.Gauge
	fillRate   prometheus.Gauge
	violations *prometheus.GaugeVec
	phases     *prometheus.HistogramVec
	swaps      *prometheus.CounterVec
}

// NewPromSink registers generation metrics on the default Prometheus
// registerer. Serving them over HTTP is the caller's business.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_runs_total",
		Help: "Total number of generation runs",
	})
	score := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_run_score",
		Help: "Weighted violation score of the last run, lower is better",
	})
	fillRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_fill_rate",
		Help: "Filled share of the weekly grid after the last run",
	})
	violations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_run_violations",
		Help: "Constraint violations left by the last run",
	}, []string{"kind"})
	phases := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_phase_duration_seconds",
		Help:    "Wall time spent in each pipeline phase",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
	swaps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_optimizer_swaps_total",
		Help: "Optimizer swap outcomes across runs",
	}, []string{"outcome"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(score); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			score = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fillRate); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fillRate = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(violations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			violations = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(phases); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			phases = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(swaps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			swaps = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		runs:       runs,
		score:      score,
		fillRate:   fillRate,
		violations: violations,
		phases:     phases,
		swaps:      swaps,
	}, nil
}

// RecordRun updates the per-run gauges and the run counter.
func (s *PromSink) RecordRun(r coremetrics.RunSample) error {
	s.runs.Inc()
	s.score.Set(r.Score)
	s.fillRate.Set(r.FillRate())
	s.violations.WithLabelValues("total").Set(float64(r.Violations))
	s.violations.WithLabelValues("jiritsu").Set(float64(r.JiritsuViolations))
	return nil
}

// RecordPhase observes the phase duration histogram.
func (s *PromSink) RecordPhase(p coremetrics.PhaseSample) error {
	s.phases.WithLabelValues(p.Phase).Observe(p.Duration.Seconds())
	return nil
}

// RecordOptimizer accumulates swap outcome counters.
func (s *PromSink) RecordOptimizer(o coremetrics.OptimizerSample) error {
	s.swaps.WithLabelValues("attempted").Add(float64(o.Attempted))
	s.swaps.WithLabelValues("accepted").Add(float64(o.Accepted))
	s.swaps.WithLabelValues("kicks").Add(float64(o.Kicks))
	return nil
}
