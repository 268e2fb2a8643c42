package metrics

import (
	"io"

	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
)

// MultiSink fans every sample out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the sample to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(r coremetrics.RunSample) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

// RecordPhase forwards phase samples to the sinks that record them.
func (m *MultiSink) RecordPhase(p coremetrics.PhaseSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PhaseRecorder); ok {
			if err := rec.RecordPhase(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOptimizer forwards optimizer samples to the sinks that record them.
func (m *MultiSink) RecordOptimizer(o coremetrics.OptimizerSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.OptimizerRecorder); ok {
			if err := rec.RecordOptimizer(o); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
