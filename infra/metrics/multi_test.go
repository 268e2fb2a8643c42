package metrics

import (
	"testing"

	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
)

type recordSink struct {
	runs   int
	phases int
}

func (r *recordSink) RecordRun(coremetrics.RunSample) error {
	r.runs++
	return nil
}

func (r *recordSink) RecordPhase(coremetrics.PhaseSample) error {
	r.phases++
	return nil
}

// runOnlySink records runs but has no optional recorders.
type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(coremetrics.RunSample) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)

	if err := m.RecordRun(coremetrics.RunSample{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordPhase(coremetrics.PhaseSample{}); err != nil {
		t.Fatalf("record phase: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 {
		t.Fatalf("run sample not forwarded to all sinks")
	}
	if s1.phases != 1 {
		t.Fatalf("phase sample not forwarded to phase recorder")
	}
}

func TestNewSinkSelection(t *testing.T) {
	s, err := NewSink(coremetrics.Config{})
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink for empty config, got %T", s)
	}

	s, err = NewSink(coremetrics.Config{Sinks: []string{coremetrics.SinkNop, coremetrics.SinkNop}})
	if err != nil {
		t.Fatalf("multi config: %v", err)
	}
	if _, ok := s.(*MultiSink); !ok {
		t.Fatalf("expected MultiSink for two sinks, got %T", s)
	}

	if _, err := NewSink(coremetrics.Config{Sinks: []string{"statsd"}}); err == nil {
		t.Fatalf("expected error for unknown sink name")
	}
}
